package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"veridian-hq/covenant/pkg/cli"
	"veridian-hq/covenant/pkg/testsuite"
)

var testFlags struct {
	save   bool
	format string
}

var testCmd = &cobra.Command{
	Use:   "test <module>",
	Short: "Run a module's declared test suite",
	Long: `Execute the test_suite a module declares against its own bindings.

Each suite entry names a target binding, optional input arguments and the
expected output. Function targets are called; plain bindings are compared
directly.

With --save, an all-green run regenerates the module's stored contracts,
re-exposing its symbols to importers.

Examples:
  # Run the suite
  covenant test validators.dsl

  # Run the suite and regenerate contracts on success
  covenant test validators.dsl --save

  # JSON output for CI
  covenant test validators.dsl --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runModuleTests,
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().BoolVar(&testFlags.save, "save", false, "regenerate contracts when every target passes")
	testCmd.Flags().StringVar(&testFlags.format, "format", "text", "output format: text, json")
}

func runModuleTests(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.Close()

	module := args[0]
	ctx := context.Background()

	var report *testsuite.Report
	saved := false
	if testFlags.save {
		report, saved, err = rt.loader.Regenerate(ctx, module)
	} else {
		_, report, err = rt.loader.RunSuite(ctx, module)
	}
	if err != nil {
		return cli.NewModuleError(module, err)
	}

	if testFlags.format == "json" {
		if err := printReportJSON(report, saved); err != nil {
			return err
		}
	} else {
		printReportText(report, saved)
	}

	if !report.AllPassed() {
		return cli.NewCommandError("test", fmt.Errorf("%d of %d targets failed",
			len(report.Failed()), len(report.Results)))
	}
	return nil
}

func printReportText(report *testsuite.Report, saved bool) {
	fmt.Printf("Running test suite for %s\n\n", report.Module)

	passed := 0
	for _, res := range report.Results {
		label := res.Target
		if res.Description != "" {
			label = fmt.Sprintf("%s (%s)", res.Target, res.Description)
		}
		if res.Passed {
			passed++
			fmt.Printf("✓ %s (%.1fms)\n", label, res.Elapsed.Seconds()*1000)
			continue
		}
		fmt.Printf("✗ %s\n", label)
		if res.Err != nil {
			fmt.Printf("  Error: %v\n", res.Err)
		} else {
			fmt.Printf("  Expected: %s\n", res.Expected)
			fmt.Printf("  Actual:   %s\n", res.Actual)
		}
	}

	fmt.Println()
	fmt.Println("Summary:")
	fmt.Printf("  %d targets run, %d passed, %d failed (%s)\n",
		len(report.Results), passed, len(report.Results)-passed, report.Elapsed.Round(1e6))
	if saved {
		fmt.Println("  ✓ Contracts regenerated")
	}
}

// reportJSON is the machine-readable shape of a suite run.
type reportJSON struct {
	Module  string       `json:"module"`
	Passed  int          `json:"passed"`
	Failed  int          `json:"failed"`
	Saved   bool         `json:"contracts_saved"`
	Targets []targetJSON `json:"targets"`
}

type targetJSON struct {
	Target      string `json:"target"`
	Description string `json:"description,omitempty"`
	Passed      bool   `json:"passed"`
	Expected    string `json:"expected,omitempty"`
	Actual      string `json:"actual,omitempty"`
	Error       string `json:"error,omitempty"`
	ElapsedMS   int64  `json:"elapsed_ms"`
}

func printReportJSON(report *testsuite.Report, saved bool) error {
	out := reportJSON{
		Module: report.Module,
		Failed: len(report.Failed()),
		Saved:  saved,
	}
	out.Passed = len(report.Results) - out.Failed

	for _, res := range report.Results {
		t := targetJSON{
			Target:      res.Target,
			Description: res.Description,
			Passed:      res.Passed,
			Expected:    res.Expected,
			Actual:      res.Actual,
			ElapsedMS:   res.Elapsed.Milliseconds(),
		}
		if res.Err != nil {
			t.Error = res.Err.Error()
		}
		out.Targets = append(out.Targets, t)
	}

	return cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, out)
}
