// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for studiodb configuration.
	DefaultConfigDir = ".studiodb"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultRolesFile is the default role table file name.
	DefaultRolesFile = "roles.yaml"
)

// Store backends.
const (
	BackendJSONFile = "jsonfile"
	BackendSQLite   = "sqlite"
)

// Config holds static configuration (read-only after init).
type Config struct {
	Studio  StudioConfig  `yaml:"studio"`
	Store   StoreConfig   `yaml:"store"`
	Backup  BackupConfig  `yaml:"backup"`
	Logging LoggingConfig `yaml:"logging"`
	Server  ServerConfig  `yaml:"server"`
}

// StudioConfig holds values used when synthesizing person records.
type StudioConfig struct {
	Name             string `yaml:"name"`
	PlaceholderImage string `yaml:"placeholder_image"`
}

// StoreConfig selects and locates the collection store.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	// DataDir holds one <collection>.json file per collection (jsonfile backend).
	DataDir string `yaml:"data_dir"`
	// SQLitePath is the database file (sqlite backend).
	SQLitePath string `yaml:"sqlite_path"`
}

// BackupConfig locates collection snapshots.
type BackupConfig struct {
	Dir string `yaml:"dir"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Bind string `yaml:"bind"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Studio: StudioConfig{
			Name:             "Posta Vermaas",
			PlaceholderImage: "/images/people/placeholder.jpg",
		},
		Store: StoreConfig{
			Backend:    BackendJSONFile,
			DataDir:    filepath.Join(DefaultConfigDir, "data"),
			SQLitePath: filepath.Join(DefaultConfigDir, "studio.db"),
		},
		Backup: BackupConfig{
			Dir: filepath.Join(DefaultConfigDir, "backups"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Server: ServerConfig{
			Bind: "127.0.0.1:8080",
		},
	}
}

// Load loads configuration from the .studiodb directory in the given path.
// Relative paths in the file are resolved against basePath.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'studiodb init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply environment variable overrides
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.resolvePaths(basePath)

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv("STUDIODB_DATA_DIR"); dir != "" {
		c.Store.DataDir = dir
	}
	if backend := os.Getenv("STUDIODB_STORE_BACKEND"); backend != "" {
		c.Store.Backend = backend
	}
	if level := os.Getenv("STUDIODB_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case BackendJSONFile:
		if strings.TrimSpace(c.Store.DataDir) == "" {
			return fmt.Errorf("store.data_dir is required for the %s backend", BackendJSONFile)
		}
	case BackendSQLite:
		if strings.TrimSpace(c.Store.SQLitePath) == "" {
			return fmt.Errorf("store.sqlite_path is required for the %s backend", BackendSQLite)
		}
	default:
		return fmt.Errorf("invalid store.backend %q (valid: %s, %s)", c.Store.Backend, BackendJSONFile, BackendSQLite)
	}
	if strings.TrimSpace(c.Studio.Name) == "" {
		return fmt.Errorf("studio.name is required")
	}
	return nil
}

func (c *Config) resolvePaths(basePath string) {
	c.Store.DataDir = resolve(basePath, c.Store.DataDir)
	c.Store.SQLitePath = resolve(basePath, c.Store.SQLitePath)
	c.Backup.Dir = resolve(basePath, c.Backup.Dir)
}

func resolve(basePath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(basePath, p)
}

// ConfigDir returns the path to the .studiodb config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// RolesFilePath returns the path to the role table file.
func RolesFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultRolesFile)
}

// Exists checks if a studiodb config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
