package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"veridian-hq/covenant/pkg/cli"
	"veridian-hq/covenant/pkg/config"
	"veridian-hq/covenant/pkg/loader"
	"veridian-hq/covenant/pkg/telemetry/logging"
	"veridian-hq/covenant/pkg/telemetry/metrics"
	"veridian-hq/covenant/pkg/testsuite"
)

// runtime bundles the pieces every command needs: configuration, logging,
// the contract store and the module loader built on top of them.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	loader   *loader.Loader
	registry *prometheus.Registry
	journal  *testsuite.Journal

	closeStore func() error
}

// newRuntime loads configuration and assembles the loader stack.
func newRuntime() (*runtime, error) {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return nil, cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger, err := logging.Setup(cfg.Logging)
	if err != nil {
		return nil, cli.NewConfigError("logging", err.Error())
	}

	store, err := buildStore(cfg)
	if err != nil {
		return nil, cli.NewConfigError("loader.store_backend", err.Error())
	}

	rt := &runtime{
		cfg:        cfg,
		logger:     logger,
		closeStore: store.Close,
	}

	opts := []loader.Option{loader.WithLogger(logger)}

	if cfg.Metrics.Enabled {
		rt.registry = prometheus.NewRegistry()
		opts = append(opts, loader.WithMetrics(metrics.NewLoaderMetrics(&cfg.Metrics, rt.registry)))
	}

	if cfg.Tests.JournalEnabled {
		journal, err := testsuite.OpenJournal(cfg.Tests.JournalPath)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to open test journal: %w", err)
		}
		rt.journal = journal
		opts = append(opts, loader.WithJournal(journal))
	}

	rt.loader = loader.New(cfg.Loader.Root, store, opts...)
	return rt, nil
}

// Close releases the runtime's store and journal.
func (rt *runtime) Close() {
	if rt.journal != nil {
		if err := rt.journal.Close(); err != nil {
			rt.logger.Warn("journal close failed", "error", err)
		}
	}
	if rt.closeStore != nil {
		if err := rt.closeStore(); err != nil {
			rt.logger.Warn("contract store close failed", "error", err)
		}
	}
}
