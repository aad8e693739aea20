package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/vango-dev/vfiber/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "vfiber.json"

	// DefaultPort is the default stream server port.
	DefaultPort = 3000

	// DefaultHost is the default stream server host.
	DefaultHost = "localhost"

	// DefaultMinBudget is the remaining slice time below which a slice yields.
	DefaultMinBudget = time.Millisecond

	// DefaultSliceBudget is the time one scheduler slice may run.
	DefaultSliceBudget = 5 * time.Millisecond

	// DefaultMetricsNamespace prefixes every exported metric.
	DefaultMetricsNamespace = "vfiber"

	// DefaultSnapshotDir is where snapshots are written without S3.
	DefaultSnapshotDir = "snapshots"
)

// Config represents the complete vfiber.json configuration.
type Config struct {
	// Scheduler tunes the cooperative scheduler.
	Scheduler SchedulerConfig `json:"scheduler"`

	// Server configures the stream server.
	Server ServerConfig `json:"server"`

	// Metrics configures Prometheus export.
	Metrics MetricsConfig `json:"metrics"`

	// Snapshot configures where rendered snapshots are stored.
	Snapshot SnapshotConfig `json:"snapshot"`

	// Log configures the logger.
	Log LogConfig `json:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// SchedulerConfig contains scheduler settings.
type SchedulerConfig struct {
	// MinBudget is the remaining time below which a slice yields (e.g., "1ms").
	MinBudget Duration `json:"minBudget,omitempty"`

	// SliceBudget is the length of one slice run by the loop (e.g., "5ms").
	SliceBudget Duration `json:"sliceBudget,omitempty"`

	// HookOrderCheck fails a render whose hook call order changed.
	HookOrderCheck bool `json:"hookOrderCheck,omitempty"`

	// FlushLimit bounds the commits one Flush may perform. Zero means unlimited.
	FlushLimit int `json:"flushLimit,omitempty"`
}

// ServerConfig contains stream server settings.
type ServerConfig struct {
	// Host is the host to bind to.
	Host string `json:"host,omitempty"`

	// Port is the port to listen on.
	Port int `json:"port,omitempty"`
}

// MetricsConfig contains metrics settings.
type MetricsConfig struct {
	// Enabled turns on Prometheus collection and the /metrics endpoint.
	Enabled bool `json:"enabled,omitempty"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty"`
}

// SnapshotConfig contains snapshot storage settings.
type SnapshotConfig struct {
	// Dir is the local directory used when no bucket is configured.
	Dir string `json:"dir,omitempty"`

	// S3 stores snapshots in a bucket instead of Dir.
	S3 S3Config `json:"s3,omitempty"`
}

// S3Config contains S3 (or S3-compatible) bucket settings.
type S3Config struct {
	Bucket   string `json:"bucket,omitempty"`
	Prefix   string `json:"prefix,omitempty"`
	Region   string `json:"region,omitempty"`
	Endpoint string `json:"endpoint,omitempty"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`
}

// Duration is a time.Duration written as a string in JSON ("5ms").
type Duration time.Duration

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or a number of nanoseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		n, nerr := strconv.ParseInt(string(data), 10, 64)
		if nerr != nil {
			return fmt.Errorf("duration must be a string like \"5ms\": %s", data)
		}
		*d = Duration(n)
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Scheduler: SchedulerConfig{
			MinBudget:   Duration(DefaultMinBudget),
			SliceBudget: Duration(DefaultSliceBudget),
		},
		Server: ServerConfig{
			Host: DefaultHost,
			Port: DefaultPort,
		},
		Metrics: MetricsConfig{
			Namespace: DefaultMetricsNamespace,
		},
		Snapshot: SnapshotConfig{
			Dir: DefaultSnapshotDir,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for vfiber.json in the directory.
func Load(dir string) (*Config, error) {
	configPath := filepath.Join(dir, ConfigFileName)
	return LoadFile(configPath)
}

// LoadOrDefault is Load, falling back to defaults when the directory has no
// config file.
func LoadOrDefault(dir string) (*Config, error) {
	if dir == "" || !Exists(dir) {
		return New(), nil
	}
	return Load(dir)
}

// LoadFile reads configuration from the specified file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeInvalidConfig).
				WithMessage("No %s found", ConfigFileName).
				WithDetail("Looked in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or omit --config to use defaults")
		}
		return nil, errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeInvalidConfig).
			WithDetail("Failed to parse " + ConfigFileName + ": " + err.Error()).
			WithSuggestion("Check that " + ConfigFileName + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	// Add newline at end of file
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeInvalidConfig).Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Scheduler
	if c.Scheduler.MinBudget == 0 {
		c.Scheduler.MinBudget = Duration(DefaultMinBudget)
	}
	if c.Scheduler.SliceBudget == 0 {
		c.Scheduler.SliceBudget = Duration(DefaultSliceBudget)
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = DefaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = DefaultPort
	}

	// Metrics
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultMetricsNamespace
	}

	// Snapshot
	if c.Snapshot.Dir == "" {
		c.Snapshot.Dir = DefaultSnapshotDir
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("server.port must be between 0 and 65535")
	}
	if c.Scheduler.MinBudget < 0 || c.Scheduler.SliceBudget < 0 {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("scheduler durations must not be negative")
	}
	if c.Scheduler.SliceBudget != 0 && c.Scheduler.SliceBudget < c.Scheduler.MinBudget {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("scheduler.sliceBudget must be at least scheduler.minBudget").
			WithSuggestion("A slice shorter than the minimum budget would yield before doing any work")
	}
	if c.Scheduler.FlushLimit < 0 {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("scheduler.flushLimit must not be negative")
	}
	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("log.level must be one of debug, info, warn, error; got " + strconv.Quote(c.Log.Level))
	}
	if c.Snapshot.S3.Bucket == "" && c.Snapshot.S3.Prefix != "" {
		return errors.New(errors.CodeInvalidConfig).
			WithDetail("snapshot.s3.prefix is set without snapshot.s3.bucket")
	}
	return nil
}

// Address returns the address string for the stream server.
func (c *Config) Address() string {
	return c.Server.Host + ":" + strconv.Itoa(c.Server.Port)
}

// URL returns the full URL for the stream server.
func (c *Config) URL() string {
	return "http://" + c.Address()
}

// SnapshotPath returns the absolute path to the snapshot directory.
func (c *Config) SnapshotPath() string {
	if filepath.IsAbs(c.Snapshot.Dir) {
		return c.Snapshot.Dir
	}
	return filepath.Join(c.Dir(), c.Snapshot.Dir)
}

// UsesS3 reports whether snapshots go to a bucket.
func (c *Config) UsesS3() bool {
	return c.Snapshot.S3.Bucket != ""
}

// Exists checks if a config file exists in the given directory.
func Exists(dir string) bool {
	path := filepath.Join(dir, ConfigFileName)
	_, err := os.Stat(path)
	return err == nil
}

// FindProjectRoot walks up directories to find the directory containing
// vfiber.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New(errors.CodeInvalidConfig).
				WithMessage("No %s found", ConfigFileName).
				WithDetail("Searched " + startDir + " and every parent directory")
		}
		dir = parent
	}
}
