// Package config defines the runtime configuration: YAML loading, default
// values, environment variable overrides (COVENANT_*), and validation.
package config
