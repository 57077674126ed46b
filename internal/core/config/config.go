// Package config handles configuration loading and validation for zen.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"

	"github.com/colonyops/zenflow/internal/core/styles"
)

// Remote drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the application configuration.
type Config struct {
	Remote        RemoteConfig        `yaml:"remote"`
	Sync          SyncConfig          `yaml:"sync"`
	Reminders     RemindersConfig     `yaml:"reminders"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Database      DatabaseConfig      `yaml:"database"`
	UI            UIConfig            `yaml:"ui"`
	DataDir       string              `yaml:"-"` // set by caller, not from config file
}

// RemoteConfig selects the authoritative task store.
type RemoteConfig struct {
	Driver string `yaml:"driver" env:"ZEN_REMOTE_DRIVER"`
	// DSN is a file path for sqlite and a connection URL for postgres.
	// An empty sqlite DSN means <data-dir>/remote.db.
	DSN     string        `yaml:"dsn" env:"ZEN_REMOTE_DSN"`
	Timeout time.Duration `yaml:"timeout" env:"ZEN_REMOTE_TIMEOUT"`
}

// SyncConfig controls background recovery from remote failures.
type SyncConfig struct {
	// RetryInterval is how often a failed sync is retried. Zero disables.
	RetryInterval time.Duration `yaml:"retry_interval" env:"ZEN_SYNC_RETRY_INTERVAL"`
}

// RemindersConfig controls the reminder scheduler.
type RemindersConfig struct {
	Interval time.Duration `yaml:"interval" env:"ZEN_REMINDERS_INTERVAL"`
}

// NotificationsConfig controls banners and terminal alerts.
type NotificationsConfig struct {
	BannerTTL time.Duration `yaml:"banner_ttl" env:"ZEN_BANNER_TTL"`
	Terminal  bool          `yaml:"terminal" env:"ZEN_NOTIFY_TERMINAL"`
	Bell      bool          `yaml:"bell" env:"ZEN_NOTIFY_BELL"`
}

// DatabaseConfig tunes the local SQLite connection pool.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// UIConfig controls CLI rendering.
type UIConfig struct {
	Theme string `yaml:"theme" env:"ZEN_THEME"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Remote: RemoteConfig{
			Driver:  DriverSQLite,
			Timeout: 10 * time.Second,
		},
		Sync: SyncConfig{
			RetryInterval: time.Minute,
		},
		Reminders: RemindersConfig{
			Interval: 15 * time.Second,
		},
		Notifications: NotificationsConfig{
			BannerTTL: 8 * time.Second,
			Terminal:  true,
			Bell:      true,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 10,
			MaxIdleConns: 5,
			BusyTimeout:  5000,
		},
		UI: UIConfig{
			Theme: styles.DefaultTheme,
		},
	}
}

// Load reads configuration from the given path, applies ZEN_* environment
// overrides and sets the data directory. If configPath is empty or doesn't
// exist, defaults are used.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			data, err := os.ReadFile(configPath)
			if err != nil {
				return nil, fmt.Errorf("read config file: %w", err)
			}

			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
// Zero durations are kept for sync.retry_interval since zero disables it.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Remote.Driver == "" {
		c.Remote.Driver = defaults.Remote.Driver
	}
	if c.Remote.Timeout == 0 {
		c.Remote.Timeout = defaults.Remote.Timeout
	}
	if c.Reminders.Interval == 0 {
		c.Reminders.Interval = defaults.Reminders.Interval
	}
	if c.Notifications.BannerTTL == 0 {
		c.Notifications.BannerTTL = defaults.Notifications.BannerTTL
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	switch c.Remote.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.Remote.DSN == "" {
			return fmt.Errorf("remote.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("remote.driver %q must be %q or %q", c.Remote.Driver, DriverSQLite, DriverPostgres)
	}

	if c.Remote.Timeout < 0 {
		return fmt.Errorf("remote.timeout cannot be negative")
	}
	if c.Sync.RetryInterval < 0 {
		return fmt.Errorf("sync.retry_interval cannot be negative")
	}
	if c.Reminders.Interval < time.Second {
		return fmt.Errorf("reminders.interval must be at least 1s")
	}
	if c.Notifications.BannerTTL < 0 {
		return fmt.Errorf("notifications.banner_ttl cannot be negative")
	}
	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}
	if _, ok := styles.GetPalette(c.UI.Theme); !ok {
		return fmt.Errorf("ui.theme %q is unknown, available: %v", c.UI.Theme, styles.ThemeNames())
	}

	return nil
}

// DatabasePath returns the local SQLite database holding banner history.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "zen.db")
}

// RemoteDSN returns the configured remote DSN, resolving the sqlite default.
func (c *Config) RemoteDSN() string {
	if c.Remote.Driver == DriverSQLite && c.Remote.DSN == "" {
		return filepath.Join(c.DataDir, "remote.db")
	}
	return c.Remote.DSN
}

// CacheDir returns the directory holding the local task cache.
func (c *Config) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}
