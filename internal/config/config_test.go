package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/vfiber/internal/errors"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultPort)
	}
	if cfg.Server.Host != DefaultHost {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, DefaultHost)
	}
	if cfg.Scheduler.MinBudget.Std() != DefaultMinBudget {
		t.Errorf("Scheduler.MinBudget = %v, want %v", cfg.Scheduler.MinBudget.Std(), DefaultMinBudget)
	}
	if cfg.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultMetricsNamespace)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Test loading non-existent config
	_, err := Load(tmpDir)
	if err == nil {
		t.Error("Expected error for missing config")
	}
	if errors.Code(err) != errors.CodeInvalidConfig {
		t.Errorf("missing config code = %q", errors.Code(err))
	}

	configJSON := `{
  "scheduler": {
    "minBudget": "2ms",
    "sliceBudget": "10ms",
    "hookOrderCheck": true
  },
  "server": {
    "port": 8080
  },
  "snapshot": {
    "s3": {"bucket": "renders", "region": "eu-west-1"}
  }
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Scheduler.MinBudget.Std() != 2*time.Millisecond {
		t.Errorf("MinBudget = %v, want 2ms", cfg.Scheduler.MinBudget.Std())
	}
	if cfg.Scheduler.SliceBudget.Std() != 10*time.Millisecond {
		t.Errorf("SliceBudget = %v, want 10ms", cfg.Scheduler.SliceBudget.Std())
	}
	if cfg.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Metrics.Namespace default not applied: %q", cfg.Metrics.Namespace)
	}
	if !cfg.Scheduler.HookOrderCheck {
		t.Error("HookOrderCheck should be true")
	}
	if cfg.Server.Port != 8080 || cfg.Server.Host != DefaultHost {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if !cfg.UsesS3() || cfg.Snapshot.S3.Region != "eu-west-1" {
		t.Errorf("Snapshot.S3 = %+v", cfg.Snapshot.S3)
	}
	if cfg.Address() != "localhost:8080" {
		t.Errorf("Address() = %q", cfg.Address())
	}
	if cfg.Dir() != tmpDir {
		t.Errorf("Dir() = %q, want %q", cfg.Dir(), tmpDir)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(tmpDir)
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "E401") {
		t.Errorf("error = %v, want E401", err)
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(t.TempDir())
	if err != nil {
		t.Fatalf("LoadOrDefault: %v", err)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("Server.Port = %d", cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, true},
		{"negative budget", func(c *Config) { c.Scheduler.MinBudget = -1 }, true},
		{"slice below minimum", func(c *Config) {
			c.Scheduler.MinBudget = Duration(5 * time.Millisecond)
			c.Scheduler.SliceBudget = Duration(time.Millisecond)
		}, true},
		{"negative flush limit", func(c *Config) { c.Scheduler.FlushLimit = -1 }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"prefix without bucket", func(c *Config) { c.Snapshot.S3.Prefix = "x/" }, true},
		{"warn level", func(c *Config) { c.Log.Level = "WARN" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, ConfigFileName)

	cfg := New()
	cfg.Scheduler.SliceBudget = Duration(8 * time.Millisecond)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"sliceBudget": "8ms"`) {
		t.Errorf("durations should be written as strings:\n%s", data)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if loaded.Scheduler.SliceBudget != cfg.Scheduler.SliceBudget {
		t.Errorf("SliceBudget = %v, want %v", loaded.Scheduler.SliceBudget.Std(), cfg.Scheduler.SliceBudget.Std())
	}
}

func TestDurationNumeric(t *testing.T) {
	var d Duration
	if err := d.UnmarshalJSON([]byte("1000")); err != nil {
		t.Fatal(err)
	}
	if d.Std() != time.Microsecond {
		t.Errorf("d = %v", d.Std())
	}
	if err := d.UnmarshalJSON([]byte(`"soon"`)); err == nil {
		t.Error("expected error for bad duration")
	}
}

func TestFindProjectRoot(t *testing.T) {
	tmpDir := t.TempDir()
	nested := filepath.Join(tmpDir, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := New().SaveTo(filepath.Join(tmpDir, ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	root, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot: %v", err)
	}
	want, _ := filepath.Abs(tmpDir)
	if root != want {
		t.Errorf("root = %q, want %q", root, want)
	}
}
