package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// COVENANT_* environment variable overrides on top. Environment variables
// always take precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("COVENANT_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("COVENANT_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	if val := os.Getenv("COVENANT_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("COVENANT_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Metrics.ListenAddress = val
	}

	if val := os.Getenv("COVENANT_LOADER_ROOT"); val != "" {
		cfg.Loader.Root = val
	}
	if val := os.Getenv("COVENANT_LOADER_BOOTSTRAP"); val != "" {
		cfg.Loader.Bootstrap = val
	}
	if val := os.Getenv("COVENANT_LOADER_STORE_BACKEND"); val != "" {
		cfg.Loader.StoreBackend = val
	}
	if val := os.Getenv("COVENANT_LOADER_SQLITE_PATH"); val != "" {
		cfg.Loader.SQLitePath = val
	}
	if val := os.Getenv("COVENANT_LOADER_REVALIDATION_CRON"); val != "" {
		cfg.Loader.RevalidationCron = val
	}
	if val := os.Getenv("COVENANT_LOADER_WATCH"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Loader.Watch = b
		}
	}
	if val := os.Getenv("COVENANT_LOADER_WATCH_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Loader.WatchDebounce = d
		}
	}

	if val := os.Getenv("COVENANT_TESTS_JOURNAL_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Tests.JournalEnabled = b
		}
	}
	if val := os.Getenv("COVENANT_TESTS_JOURNAL_PATH"); val != "" {
		cfg.Tests.JournalPath = val
	}
}
