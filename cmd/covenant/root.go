package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"veridian-hq/covenant/pkg/config"
	"veridian-hq/covenant/pkg/contract/storage"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "covenant",
	Short: "Covenant - contract-driven DSL runtime",
	Long: `Covenant runs declarative DSL modules behind a contract-driven
dependency filter.

A module's exported symbols are only visible to importers while their
stored contracts match the current source: edit a tested function and it
vanishes from every import until its test suite passes again.

Core commands:
  - run: execute the bootstrap program with filtered imports
  - test: execute a module's declared test suite
  - contracts: inspect and regenerate stored contracts
  - check: parse modules without executing them`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "covenant.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.CompletionOptions.DisableDefaultCmd = false
}

// loadRuntimeConfig loads the configuration file, falling back to defaults
// when the default file is absent and no explicit path was given.
func loadRuntimeConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
		if !rootCmd.PersistentFlags().Changed("config") {
			return config.Default(), nil
		}
		return nil, fmt.Errorf("config file %q not found", cfgFile)
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}

// buildStore constructs the contract store the configuration selects.
func buildStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Loader.StoreBackend {
	case "file", "":
		return storage.NewFileStore(cfg.Loader.Root), nil
	case "sqlite":
		sqliteCfg := storage.DefaultSQLiteConfig()
		if cfg.Loader.SQLitePath != "" {
			sqliteCfg.Path = cfg.Loader.SQLitePath
		}
		return storage.NewSQLiteStore(sqliteCfg)
	case "memory":
		return storage.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported contract store backend: %s", cfg.Loader.StoreBackend)
	}
}
