package config

import "time"

// Config is the root configuration.
type Config struct {
	// Logging configures structured logging output.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics configures the Prometheus metrics endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Loader configures module loading and contract validation.
	Loader LoaderConfig `yaml:"loader"`

	// Tests configures test-suite execution.
	Tests TestsConfig `yaml:"tests"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	Format string `yaml:"format"`

	// AddSource includes file and line number in logs.
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	// Enabled turns the metrics endpoint on.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the address for the /metrics endpoint.
	ListenAddress string `yaml:"listen_address"`

	// Namespace is the metric name prefix.
	Namespace string `yaml:"namespace"`

	// Subsystem is the metric subsystem label.
	Subsystem string `yaml:"subsystem"`
}

// LoaderConfig configures module loading and the contract store.
type LoaderConfig struct {
	// Root is the directory module paths resolve against.
	Root string `yaml:"root"`

	// Bootstrap is the production entry program run by `covenant run`.
	Bootstrap string `yaml:"bootstrap"`

	// StoreBackend selects the contract store: "file", "sqlite" or "memory".
	StoreBackend string `yaml:"store_backend"`

	// SQLitePath is the contract database path for the sqlite backend.
	SQLitePath string `yaml:"sqlite_path"`

	// RevalidationCron, when set, periodically re-validates loaded modules
	// against their stored contracts (standard cron expression).
	RevalidationCron string `yaml:"revalidation_cron"`

	// Watch invalidates cached modules when their source or contract files
	// change on disk.
	Watch bool `yaml:"watch"`

	// WatchDebounce batches rapid filesystem events.
	WatchDebounce time.Duration `yaml:"watch_debounce"`
}

// TestsConfig configures DSL test-suite execution.
type TestsConfig struct {
	// JournalEnabled records every suite run to the journal database.
	JournalEnabled bool `yaml:"journal_enabled"`

	// JournalPath is the journal database path.
	JournalPath string `yaml:"journal_path"`
}
