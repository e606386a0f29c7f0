package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"veridian-hq/covenant/pkg/cli"
	"veridian-hq/covenant/pkg/loader"
	"veridian-hq/covenant/pkg/telemetry/metrics"
	"veridian-hq/covenant/pkg/watch"
)

var runFlags struct {
	serve bool
}

var runCmd = &cobra.Command{
	Use:   "run [program]",
	Short: "Run a production program with filtered imports",
	Long: `Execute a DSL program through the dependency filter.

The program's own bindings run unfiltered, but every module it imports is
validated against its stored contracts first: symbols whose source changed
since their last passing test run are withheld.

Without an argument the configured bootstrap program runs.

Examples:
  # Run the configured bootstrap
  covenant run

  # Run a specific program
  covenant run pipelines/ingest.dsl

  # Stay resident, watching sources and serving metrics
  covenant run --serve`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProgram,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&runFlags.serve, "serve", false, "stay resident after the program completes")
}

func runProgram(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	program := rt.cfg.Loader.Bootstrap
	if len(args) > 0 {
		program = args[0]
	}
	if program == "" {
		return cli.NewConfigError("loader.bootstrap", "no program given and no bootstrap configured")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var metricsServer *http.Server
	if rt.cfg.Metrics.Enabled && rt.registry != nil {
		metricsServer = startMetricsServer(rt)
		defer shutdownMetricsServer(rt, metricsServer)
	}

	fmt.Printf("Running %s (root: %s)\n", program, rt.cfg.Loader.Root)

	start := time.Now()
	bindings, err := rt.loader.Run(ctx, program)
	if err != nil {
		return cli.NewModuleError(program, err)
	}

	fmt.Printf("✓ Program completed in %s (%d bindings, %d modules loaded)\n",
		time.Since(start).Round(time.Millisecond), bindings.Len(), len(rt.loader.Loaded()))

	if !runFlags.serve {
		return nil
	}

	if err := startResident(ctx, rt); err != nil {
		return cli.NewCommandError("run", err)
	}

	fmt.Println("\nPress Ctrl+C to stop")
	sig := <-cli.WaitForShutdown()
	fmt.Printf("\nReceived signal %s, shutting down\n", sig)
	cancel()
	return nil
}

// startResident wires the optional long-running pieces: the source watcher
// and the revalidation scheduler.
func startResident(ctx context.Context, rt *runtime) error {
	if rt.cfg.Loader.Watch {
		watchCfg := watch.DefaultConfig(rt.cfg.Loader.Root)
		if rt.cfg.Loader.WatchDebounce > 0 {
			watchCfg.DebounceInterval = rt.cfg.Loader.WatchDebounce
		}
		watcher, err := watch.New(watchCfg, rt.loader, rt.logger)
		if err != nil {
			return fmt.Errorf("failed to create watcher: %w", err)
		}
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				rt.logger.Error("watcher stopped", "error", err)
			}
		}()
		fmt.Printf("✓ Watching %s for source changes\n", rt.cfg.Loader.Root)
	}

	if rt.cfg.Loader.RevalidationCron != "" {
		scheduler := loader.NewScheduler(rt.loader, rt.cfg.Loader.RevalidationCron)
		if err := scheduler.Start(ctx); err != nil {
			return fmt.Errorf("failed to start revalidation scheduler: %w", err)
		}
		fmt.Printf("✓ Revalidation scheduled (%s)\n", rt.cfg.Loader.RevalidationCron)
	}
	return nil
}

func startMetricsServer(rt *runtime) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(rt.registry))

	srv := &http.Server{
		Addr:              rt.cfg.Metrics.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rt.logger.Error("metrics server failed", "error", err)
		}
	}()

	fmt.Printf("✓ Metrics endpoint: http://%s/metrics\n", rt.cfg.Metrics.ListenAddress)
	return srv
}

func shutdownMetricsServer(rt *runtime, srv *http.Server) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		rt.logger.Warn("metrics server shutdown failed", "error", err)
	}
}
