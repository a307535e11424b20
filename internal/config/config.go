package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Driver string

const (
	DriverSqlite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMssql    Driver = "mssql"
	DriverMysql    Driver = "mysql"
)

const (
	DefaultPath     = "data/data.db"
	DefaultFormat   = "plain"
	DefaultMaxWidth = 40
)

// Environment variables read by ApplyEnv.
const (
	EnvPath   = "DB_PATH"
	EnvDriver = "DB_DRIVER"
	EnvConfig = "DBPEEK_CONFIG"
)

type Config struct {
	Driver Driver       `yaml:"driver"`
	Path   string       `yaml:"path"` // file path for sqlite, DSN otherwise
	Output OutputConfig `yaml:"output"`
	Log    LogConfig    `yaml:"log"`
}

type OutputConfig struct {
	Format   string `yaml:"format"`
	MaxWidth int    `yaml:"max_width"`
	NoColor  bool   `yaml:"no_color"`
}

type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default inspects data/data.db with the sqlite driver.
func Default() *Config {
	return &Config{
		Driver: DriverSqlite,
		Path:   DefaultPath,
		Output: OutputConfig{
			Format:   DefaultFormat,
			MaxWidth: DefaultMaxWidth,
		},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the
// file keep their default value.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides the database location from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := getenv(EnvPath); v != "" {
		c.Path = v
	}
	if v := getenv(EnvDriver); v != "" {
		c.Driver = Driver(v)
	}
}

func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSqlite, DriverPostgres, DriverMssql, DriverMysql:
	case "":
		return errors.New("driver is required")
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.Path == "" {
		return errors.New("database path is required")
	}
	switch c.Output.Format {
	case "plain", "table":
	default:
		return fmt.Errorf("unsupported output format %q", c.Output.Format)
	}
	if c.Output.MaxWidth < 0 {
		return errors.New("output.max_width must not be negative")
	}
	switch c.Log.Level {
	case "", "info", "debug", "trace":
	default:
		return fmt.Errorf("unsupported log level %q", c.Log.Level)
	}
	return nil
}
