package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for inconsistencies.
func Validate(cfg *Config) error {
	switch cfg.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", cfg.Logging.Level)
	}

	switch cfg.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("logging.format: unknown format %q", cfg.Logging.Format)
	}

	switch cfg.Loader.StoreBackend {
	case "file", "sqlite", "memory":
	default:
		return fmt.Errorf("loader.store_backend: unknown backend %q", cfg.Loader.StoreBackend)
	}
	if cfg.Loader.StoreBackend == "sqlite" && cfg.Loader.SQLitePath == "" {
		return fmt.Errorf("loader.sqlite_path: required for the sqlite backend")
	}

	if expr := cfg.Loader.RevalidationCron; expr != "" {
		if _, err := cron.ParseStandard(expr); err != nil {
			return fmt.Errorf("loader.revalidation_cron: %w", err)
		}
	}

	if cfg.Loader.WatchDebounce < 0 {
		return fmt.Errorf("loader.watch_debounce: must not be negative")
	}

	return nil
}
