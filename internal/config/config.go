package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Supported store drivers.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
)

// Config is the top-level server configuration.
type Config struct {
	// Listen is the HTTP listen address (":7521" or "127.0.0.1:8080").
	Listen string `yaml:"listen"`

	// BaseURL prefixes share links, e.g. "https://cal.example.com".
	BaseURL string `yaml:"base_url"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// DefaultOwner is used when a request carries no X-Owner-ID header and
	// for MCP tool calls that name no owner.
	DefaultOwner string `yaml:"default_owner"`

	Store StoreConfig `yaml:"store"`

	// SweepCron schedules removal of categories and days whose calendar is
	// gone. Empty disables the janitor.
	SweepCron string `yaml:"sweep_cron"`
}

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver        string `yaml:"driver"`
	MongoURI      string `yaml:"mongo_uri"`
	MongoDatabase string `yaml:"mongo_database"`
	SQLitePath    string `yaml:"sqlite_path"`
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:       ":7521",
		LogLevel:     "info",
		DefaultOwner: "local",
		Store: StoreConfig{
			Driver:        DriverSQLite,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "colorcal",
			SQLitePath:    "colorcal.db",
		},
		SweepCron: "@daily",
	}
}

// Normalize fills in zero values so partially-filled files still work.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.Listen == "" {
		c.Listen = d.Listen
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
	if c.DefaultOwner == "" {
		c.DefaultOwner = d.DefaultOwner
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = d.Store.Driver
	}
	if c.Store.MongoURI == "" {
		c.Store.MongoURI = d.Store.MongoURI
	}
	if c.Store.MongoDatabase == "" {
		c.Store.MongoDatabase = d.Store.MongoDatabase
	}
	if c.Store.SQLitePath == "" {
		c.Store.SQLitePath = d.Store.SQLitePath
	}
}

// Validate reports settings Normalize cannot repair.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverMongo, DriverSQLite:
	default:
		return fmt.Errorf("unknown store driver %q (want %s or %s)", c.Store.Driver, DriverMongo, DriverSQLite)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Load reads the YAML file at path. A missing file (or empty path) yields
// the defaults; nothing is written to disk.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	set := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}

	var port string
	set("PORT", &port)
	if port != "" {
		c.Listen = ":" + port
	}
	set("LISTEN", &c.Listen)
	set("BASE_URL", &c.BaseURL)
	set("LOG_LEVEL", &c.LogLevel)
	set("DEFAULT_OWNER", &c.DefaultOwner)
	set("STORE_DRIVER", &c.Store.Driver)
	set("MONGODB_URI", &c.Store.MongoURI)
	set("MONGODB_DATABASE", &c.Store.MongoDatabase)
	set("SQLITE_PATH", &c.Store.SQLitePath)
	if v, ok := lookup("SWEEP_CRON"); ok {
		c.SweepCron = v
	}
	c.Normalize()
}

// ParseLevel maps a config log level to its slog value.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
