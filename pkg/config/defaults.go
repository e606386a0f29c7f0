package config

import "time"

// ApplyDefaults fills unset fields with their default values.
func ApplyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = ":9464"
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "covenant"
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = "loader"
	}

	if cfg.Loader.Root == "" {
		cfg.Loader.Root = "."
	}
	if cfg.Loader.Bootstrap == "" {
		cfg.Loader.Bootstrap = "bootstrap.dsl"
	}
	if cfg.Loader.StoreBackend == "" {
		cfg.Loader.StoreBackend = "file"
	}
	if cfg.Loader.SQLitePath == "" {
		cfg.Loader.SQLitePath = "data/contracts.db"
	}
	if cfg.Loader.WatchDebounce == 0 {
		cfg.Loader.WatchDebounce = 500 * time.Millisecond
	}

	if cfg.Tests.JournalPath == "" {
		cfg.Tests.JournalPath = "data/test_runs.db"
	}
}

// Default returns a fully defaulted configuration.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
