package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location.
const ConfigPath = "config.yaml"

const defaultSyncIntervalMinutes = 5

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	SourceDatabaseURL   string `yaml:"sourceDatabaseURL"`
	ReplicaDatabaseURL  string `yaml:"replicaDatabaseURL"`
	SyncIntervalMinutes int    `yaml:"syncIntervalMinutes"`
	RedisAddr           string `yaml:"redisAddr"`
	RedisPassword       string `yaml:"redisPassword"`
	LogLevel            string `yaml:"logLevel"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	// Override with environment variables
	if v := os.Getenv("SYNC_SOURCE_DATABASE_URL"); v != "" {
		cfg.SourceDatabaseURL = v
	}
	if v := os.Getenv("SYNC_REPLICA_DATABASE_URL"); v != "" {
		cfg.ReplicaDatabaseURL = v
	}
	if v := os.Getenv("SYNC_INTERVAL_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.SyncIntervalMinutes = n
		}
	}
	if v := os.Getenv("SYNC_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("SYNC_REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("SYNC_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if cfg.SyncIntervalMinutes == 0 {
		cfg.SyncIntervalMinutes = defaultSyncIntervalMinutes
	}
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SyncInterval returns the configured interval as a duration.
func (c FileConfig) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalMinutes) * time.Minute
}

func validateConfig(cfg FileConfig) error {
	if cfg.SourceDatabaseURL == "" {
		return errors.New("config: sourceDatabaseURL is required (set SYNC_SOURCE_DATABASE_URL)")
	}
	if cfg.ReplicaDatabaseURL == "" {
		return errors.New("config: replicaDatabaseURL is required (set SYNC_REPLICA_DATABASE_URL)")
	}
	if cfg.SyncIntervalMinutes < 1 {
		return fmt.Errorf("config: syncIntervalMinutes must be at least 1, got %d", cfg.SyncIntervalMinutes)
	}
	return nil
}
