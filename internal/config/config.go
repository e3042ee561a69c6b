// Package config provides configuration loading and structs for the Tana server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	Explore   ExploreConfig   `yaml:"explore"`
	Providers ProvidersConfig `yaml:"providers"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// StorageConfig holds paths for the library database and search index.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	IndexPath    string `yaml:"index_path"`
}

// ExploreConfig holds settings for cross-provider media search.
type ExploreConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MaxResults     int `yaml:"max_results"`
}

// ProvidersConfig holds per-provider settings.
type ProvidersConfig struct {
	TMDB       TMDBConfig                 `yaml:"tmdb"`
	MangaDex   MangaDexConfig             `yaml:"mangadex"`
	RateLimits map[string]RateLimitConfig `yaml:"rate_limits"`
}

// TMDBConfig holds TMDB credentials. The key is an API read access token;
// the TMDB_API_KEY environment variable overrides the file value.
type TMDBConfig struct {
	APIKey string `yaml:"api_key"`
}

// MangaDexConfig holds MangaDex client settings.
type MangaDexConfig struct {
	UserAgent string `yaml:"user_agent"`
}

// RateLimitConfig overrides the built-in request rate for one provider.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size"`
}

// Load reads and parses the config file at path, expands paths, applies
// defaults, and applies environment overrides. Returns an error if the file
// cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.IndexPath = expandPath(cfg.Storage.IndexPath, configDir)

	if key := os.Getenv("TMDB_API_KEY"); key != "" {
		cfg.Providers.TMDB.APIKey = key
	}

	return &cfg, nil
}

// Save writes the config to path. Used to create a starter config on first run.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
