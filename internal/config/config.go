// Package config loads the catalogd server configuration from a YAML file
// with environment variable overrides. Environment values win over file
// values so deployments can tweak a shared config without editing it.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full catalogd configuration.
type Config struct {
	Listen          string          `yaml:"listen"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout"`
	Source          SourceConfig    `yaml:"source"`
	Blob            BlobConfig      `yaml:"blob"`
	Telemetry       TelemetryConfig `yaml:"telemetry"`
	Metrics         MetricsConfig   `yaml:"metrics"`
}

// SourceConfig selects the canonical record source.
type SourceConfig struct {
	Driver string `yaml:"driver"` // file|sqlite|postgres
	Path   string `yaml:"path"`   // JSON document for file, db file for sqlite
	DSN    string `yaml:"dsn"`    // postgres connection string
}

// BlobConfig selects the export artifact store.
type BlobConfig struct {
	Driver string `yaml:"driver"` // fs|s3|memory
	FSRoot string `yaml:"fs_root"`
}

// TelemetryConfig points at the visitor event collector. An empty endpoint
// disables reporting.
type TelemetryConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// MetricsConfig selects the metrics backend.
type MetricsConfig struct {
	Driver string `yaml:"driver"` // prometheus|expvar|none (default prometheus)
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() Config {
	return Config{
		Listen:          ":8080",
		ShutdownTimeout: 10 * time.Second,
		Source:          SourceConfig{Driver: "file"},
		Blob:            BlobConfig{Driver: "fs"},
		Metrics:         MetricsConfig{Driver: "prometheus"},
	}
}

// Load reads the YAML file at path, applies environment overrides, and
// validates the result. An empty path skips the file and uses defaults plus
// environment only; a missing file at an explicit path is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&cfg)
	cfg.Source.Driver = strings.ToLower(cfg.Source.Driver)
	cfg.Blob.Driver = strings.ToLower(cfg.Blob.Driver)
	cfg.Metrics.Driver = strings.ToLower(cfg.Metrics.Driver)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.Listen, "CATALOGCORE_LISTEN")
	setString(&cfg.Source.Driver, "CATALOGCORE_SOURCE_DRIVER")
	switch cfg.Source.Driver {
	case "sqlite":
		setString(&cfg.Source.Path, "CATALOGCORE_SQLITE_PATH")
	case "postgres":
		setString(&cfg.Source.DSN, "CATALOGCORE_POSTGRES_DSN")
	default:
		setString(&cfg.Source.Path, "CATALOGCORE_SOURCE_PATH")
	}
	setString(&cfg.Blob.Driver, "CATALOGCORE_BLOB_DRIVER")
	setString(&cfg.Blob.FSRoot, "CATALOGCORE_BLOB_FS_ROOT")
	setString(&cfg.Telemetry.Endpoint, "CATALOGCORE_TELEMETRY_ENDPOINT")
	setString(&cfg.Metrics.Driver, "CATALOGCORE_METRICS_DRIVER")
}

func setString(dst *string, env string) {
	if v, ok := os.LookupEnv(env); ok && v != "" {
		*dst = v
	}
}

func (c Config) validate() error {
	switch strings.ToLower(c.Source.Driver) {
	case "file", "sqlite", "postgres", "":
	default:
		return fmt.Errorf("unknown source driver %q", c.Source.Driver)
	}
	switch strings.ToLower(c.Blob.Driver) {
	case "fs", "s3", "memory", "":
	default:
		return fmt.Errorf("unknown blob driver %q", c.Blob.Driver)
	}
	switch strings.ToLower(c.Metrics.Driver) {
	case "prometheus", "expvar", "none", "":
	default:
		return fmt.Errorf("unknown metrics driver %q", c.Metrics.Driver)
	}
	if c.Listen == "" {
		return fmt.Errorf("listen address required")
	}
	return nil
}

// SourcePath returns the path/DSN value appropriate for the selected driver.
func (c Config) SourcePath() string {
	if strings.ToLower(c.Source.Driver) == "postgres" {
		return c.Source.DSN
	}
	return c.Source.Path
}
