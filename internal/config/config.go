// ABOUTME: Configuration management for diary with YAML config loading.
// ABOUTME: Handles store backend settings, environment overrides, log settings, and ~ expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/2389-research/diary/internal/storage"
)

// Environment variables that override the config file.
const (
	EnvStoreURL     = "DIARY_STORE_URL"
	EnvStoreAnonKey = "DIARY_STORE_ANON_KEY"
	EnvDatabaseURL  = "DIARY_DATABASE_URL"
)

// Config stores diary configuration loaded from ~/.config/diary/config.yaml.
type Config struct {
	Store StoreConfig `yaml:"store"`
	Log   LogConfig   `yaml:"log"`
}

// StoreConfig selects the entry store backend and its credentials.
type StoreConfig struct {
	Backend string `yaml:"backend,omitempty"` // rest (default), postgres, or sqlite
	URL     string `yaml:"url,omitempty"`
	AnonKey string `yaml:"anon_key,omitempty"`
	Table   string `yaml:"table,omitempty"`
	DSN     string `yaml:"dsn,omitempty"`
	Path    string `yaml:"path,omitempty"`
	UserID  string `yaml:"user_id,omitempty"`
}

// LogConfig holds diagnostic log settings.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// HasStore returns true if the selected backend has the settings it needs.
func (c *Config) HasStore() bool {
	switch c.Store.Backend {
	case "", storage.BackendREST:
		return c.Store.URL != "" && c.Store.AnonKey != ""
	case storage.BackendPostgres:
		return c.Store.DSN != ""
	case storage.BackendSQLite:
		return true
	default:
		return false
	}
}

// StoreOptions converts the store section into storage.Options, resolving paths.
func (c *Config) StoreOptions() (storage.Options, error) {
	opts := storage.Options{
		Backend: c.Store.Backend,
		URL:     c.Store.URL,
		AnonKey: c.Store.AnonKey,
		Table:   c.Store.Table,
		DSN:     c.Store.DSN,
	}
	if c.Store.Backend == storage.BackendSQLite {
		path, err := c.GetSQLitePath()
		if err != nil {
			return storage.Options{}, err
		}
		opts.Path = path
	}
	return opts, nil
}

// GetSQLitePath returns the SQLite database path, defaulting to the data dir.
func (c *Config) GetSQLitePath() (string, error) {
	if c.Store.Path != "" {
		return ExpandPath(c.Store.Path)
	}
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "diary.db"), nil
}

// GetLogPath returns the log file path, defaulting to diary.log in the data dir.
func (c *Config) GetLogPath() (string, error) {
	if c.Log.File != "" {
		return ExpandPath(c.Log.File)
	}
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "diary.log"), nil
}

// ApplyEnv overlays non-empty environment variables onto the config.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvStoreURL); v != "" {
		c.Store.URL = v
	}
	if v := os.Getenv(EnvStoreAnonKey); v != "" {
		c.Store.AnonKey = v
	}
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Store.DSN = v
	}
}

// DataDir returns the default diary data directory.
func DataDir() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "diary"), nil
}

// GetConfigPath returns the config file path.
func GetConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "diary", "config.yaml"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Load reads config from disk and applies environment overrides.
// Returns a default config if the file doesn't exist.
func Load() (*Config, error) {
	cfg, err := LoadFile()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// LoadFile reads config from disk without environment overrides.
func LoadFile() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
