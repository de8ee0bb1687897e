package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// AppName is the application name used for config and data directories
	AppName = "tally"
	// ConfigFile is the name of the TOML configuration file
	ConfigFile = "config.toml"
	// DefaultStoreFile is the SQLite database file name inside the data directory
	DefaultStoreFile = "timesheet.db"
	// DefaultRetention is how long backups are kept before the startup sweep removes them
	DefaultRetention = 48 * time.Hour
)

// Config represents the application configuration
type Config struct {
	// DataDir holds the store, the log file and (by default) the backups
	DataDir string `toml:"data_dir" env:"DATA_DIR"`
	// StoreFile is the database file name, relative to DataDir unless absolute
	StoreFile string `toml:"store_file" env:"STORE_FILE"`
	// BackupDir receives the timestamped store copies; defaults to DataDir/.backup
	BackupDir string `toml:"backup_dir" env:"BACKUP_DIR"`
	// BackupRetention is a Go duration string such as "48h"
	BackupRetention string `toml:"backup_retention" env:"BACKUP_RETENTION"`
	// LogFile defaults to DataDir/tally.log
	LogFile string `toml:"log_file" env:"LOG_FILE"`
	// LogLevel is one of debug, info, warn, error
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`
	// ExportFile is the default CSV export destination
	ExportFile string `toml:"export_file" env:"EXPORT_FILE"`
	// Timezone is an IANA timezone name (e.g., "America/New_York") or "Local"
	Timezone string `toml:"timezone" env:"TIMEZONE"`
}

// DefaultConfig returns a Config with the defaults used when no file exists.
func DefaultConfig() Config {
	return Config{
		StoreFile:       DefaultStoreFile,
		BackupRetention: "48h",
		LogLevel:        "info",
		ExportFile:      "tally-timesheet.csv",
		Timezone:        "Local",
	}
}

// GetConfigPath returns the path to the config file.
// Uses os.UserConfigDir() for cross-platform XDG-compliant config directory.
func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, AppName, ConfigFile), nil
}

// DefaultDataDir returns ~/.tally.
func DefaultDataDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, "."+AppName), nil
}

// Load builds the effective configuration: defaults, then the TOML file at
// path (if it exists), then a .env file in the working directory, then
// TALLY_* environment variables.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	// A missing .env is the common case.
	_ = godotenv.Load()

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "TALLY_"}); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := cfg.Normalize(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Normalize fills derived paths and tidies string values.
func (c *Config) Normalize() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Timezone = strings.TrimSpace(c.Timezone)
	if c.Timezone == "" {
		c.Timezone = "Local"
	}
	if c.StoreFile == "" {
		c.StoreFile = DefaultStoreFile
	}
	if c.BackupRetention == "" {
		c.BackupRetention = "48h"
	}
	if c.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return fmt.Errorf("failed to get data directory: %w", err)
		}
		c.DataDir = dir
	}
	if c.BackupDir == "" {
		c.BackupDir = filepath.Join(c.DataDir, ".backup")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(c.DataDir, AppName+".log")
	}
	return nil
}

// SetDataDir moves the data directory, carrying along the backup directory
// and log file when they were derived from the old one.
func (c *Config) SetDataDir(dir string) error {
	if dir == "" {
		return nil
	}
	if c.BackupDir == filepath.Join(c.DataDir, ".backup") {
		c.BackupDir = ""
	}
	if c.LogFile == filepath.Join(c.DataDir, AppName+".log") {
		c.LogFile = ""
	}
	c.DataDir = dir
	return c.Normalize()
}

// Validate rejects values the rest of the program cannot work with.
func (c Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.Retention(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// StorePath returns the absolute path of the database file.
func (c Config) StorePath() string {
	if filepath.IsAbs(c.StoreFile) {
		return c.StoreFile
	}
	return filepath.Join(c.DataDir, c.StoreFile)
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// Retention parses the backup retention window.
func (c Config) Retention() (time.Duration, error) {
	d, err := time.ParseDuration(c.BackupRetention)
	if err != nil {
		return 0, fmt.Errorf("invalid backup_retention %q: %w", c.BackupRetention, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid backup_retention %q: must be positive", c.BackupRetention)
	}
	return d, nil
}

// Level maps LogLevel onto slog.
func (c Config) Level() (slog.Level, error) {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: use debug, info, warn or error", c.LogLevel)
	}
}

// GenerateSampleConfig returns a commented config file with the defaults.
func GenerateSampleConfig() string {
	return `# tally configuration file

# Where the timesheet database, log file and backups live (default: ~/.tally)
# data_dir = "/home/me/.tally"

# Database file name inside data_dir
store_file = "timesheet.db"

# Backups older than this are removed on startup
backup_retention = "48h"

# Log level: debug, info, warn or error
log_level = "info"

# Default CSV export file
export_file = "tally-timesheet.csv"

# Timezone: IANA timezone name (e.g., "America/New_York") or "Local"
timezone = "Local"
`
}

// Encode writes c as TOML.
func (c Config) Encode() (string, error) {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return "", err
	}
	return b.String(), nil
}
