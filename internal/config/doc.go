// Package config provides configuration parsing for vfiber.
//
// The configuration is stored in vfiber.json. Durations are written as
// strings. Missing fields take their defaults.
//
// # Configuration File Structure
//
//	{
//	  "scheduler": {
//	    "minBudget": "1ms",
//	    "sliceBudget": "5ms",
//	    "hookOrderCheck": true,
//	    "flushLimit": 100
//	  },
//	  "server": {"host": "localhost", "port": 3000},
//	  "metrics": {"enabled": true, "namespace": "vfiber"},
//	  "snapshot": {
//	    "dir": "snapshots",
//	    "s3": {"bucket": "my-bucket", "prefix": "renders/", "region": "us-east-1"}
//	  },
//	  "log": {"level": "debug"}
//	}
//
// # Usage
//
//	cfg, err := config.LoadOrDefault(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Listening on", cfg.Address())
package config
