package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"veridian-hq/covenant/pkg/cli"
)

var contractsCmd = &cobra.Command{
	Use:   "contracts",
	Short: "Inspect and regenerate stored contracts",
	Long: `Manage the stored contracts that gate symbol exposure.

A contract records, per exported symbol, the source hash and test-suite
hash of the last run where every target passed. Symbols whose current
source no longer matches are withheld from importers until regenerated.`,
}

var contractsShowFlags struct {
	format string
}

var contractsShowCmd = &cobra.Command{
	Use:   "show <module>",
	Short: "Show a module's stored contracts",
	Args:  cobra.ExactArgs(1),
	RunE:  showContracts,
}

var contractsGenerateCmd = &cobra.Command{
	Use:   "generate <module>...",
	Short: "Regenerate contracts for modules whose suites pass",
	Long: `Run each module's test suite and, when every target passes, write
fresh contracts for its exported symbols. A failing suite leaves the
stored contracts untouched and the command exits non-zero.`,
	Args: cobra.MinimumNArgs(1),
	RunE: generateContracts,
}

func init() {
	rootCmd.AddCommand(contractsCmd)
	contractsCmd.AddCommand(contractsShowCmd)
	contractsCmd.AddCommand(contractsGenerateCmd)

	contractsShowCmd.Flags().StringVar(&contractsShowFlags.format, "format", "text", "output format: text, json")
}

func showContracts(cmd *cobra.Command, args []string) error {
	cfg, err := loadRuntimeConfig()
	if err != nil {
		return err
	}

	module := args[0]
	store, err := buildStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	c, err := store.Load(context.Background(), module)
	if err != nil {
		return cli.NewModuleError(module, err)
	}

	if contractsShowFlags.format == "json" {
		return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, c)
	}

	if len(c) == 0 {
		fmt.Printf("No stored contracts for %s\n", module)
		return nil
	}

	symbols := make([]string, 0, len(c))
	for name := range c {
		symbols = append(symbols, name)
	}
	sort.Strings(symbols)

	fmt.Printf("Contracts for %s (%d symbols)\n\n", module, len(symbols))
	for _, name := range symbols {
		rec := c[name]
		fmt.Printf("  %-24s %-12s source=%.12s test=%.12s %s\n",
			name, rec.Status, rec.SourceHash, rec.TestHash,
			rec.Timestamp.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func generateContracts(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := context.Background()
	failures := 0

	var progress cli.ProgressReporter
	if len(args) > 1 {
		progress = cli.NewProgressReporter(os.Stderr)
		progress.Start(int64(len(args)))
	}

	lines := make([]string, 0, len(args))
	for i, module := range args {
		report, saved, err := rt.loader.Regenerate(ctx, module)
		if progress != nil {
			progress.Update(int64(i + 1))
		}
		switch {
		case err != nil:
			lines = append(lines, fmt.Sprintf("✗ %s: %v", module, err))
			failures++
		case !saved:
			lines = append(lines, fmt.Sprintf("✗ %s: %d of %d targets failed, contracts unchanged",
				module, len(report.Failed()), len(report.Results)))
			failures++
		default:
			lines = append(lines, fmt.Sprintf("✓ %s: %d targets passed, contracts regenerated",
				module, len(report.Results)))
		}
	}

	if progress != nil {
		progress.Finish()
	}
	for _, line := range lines {
		fmt.Println(line)
	}

	if failures > 0 {
		return cli.NewCommandError("contracts generate",
			fmt.Errorf("%d of %d modules failed", failures, len(args)))
	}
	return nil
}
