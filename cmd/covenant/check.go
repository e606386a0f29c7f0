package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"veridian-hq/covenant/pkg/cli"
	dslerrors "veridian-hq/covenant/pkg/dsl/errors"
	"veridian-hq/covenant/pkg/loader"
)

var checkFlags struct {
	format string
}

var checkCmd = &cobra.Command{
	Use:   "check <file>...",
	Short: "Parse modules without executing them",
	Long: `Parse DSL module files and report syntax errors, declared imports,
exports and whether a test suite is present. Nothing is evaluated.

Examples:
  # Check a single module
  covenant check validators.dsl

  # Check everything under a directory
  covenant check modules/*.dsl

  # JSON output for CI
  covenant check validators.dsl --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: checkModules,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkFlags.format, "format", "text", "output format: text, json")
}

// checkResult is the parse outcome for one file.
type checkResult struct {
	File      string   `json:"file"`
	Valid     bool     `json:"valid"`
	Error     string   `json:"error,omitempty"`
	Line      int      `json:"line,omitempty"`
	Column    int      `json:"column,omitempty"`
	Imports   []string `json:"imports,omitempty"`
	Exports   int      `json:"exports"`
	HasSuite  bool     `json:"has_test_suite"`
	ReExports int      `json:"re_exports"`
}

func checkModules(cmd *cobra.Command, args []string) error {
	results := make([]checkResult, 0, len(args))
	failed := 0

	for _, file := range args {
		result := checkModuleFile(file)
		if !result.Valid {
			failed++
		}
		results = append(results, result)
	}

	if checkFlags.format == "json" {
		if err := cli.NewFormatter(cli.FormatJSON).FormatTo(os.Stdout, results); err != nil {
			return err
		}
	} else {
		printCheckResults(results)
	}

	if failed > 0 {
		return cli.NewCommandError("check", fmt.Errorf("%d of %d files failed", failed, len(args)))
	}
	return nil
}

func checkModuleFile(file string) checkResult {
	result := checkResult{File: file}

	data, err := os.ReadFile(file)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	mod, err := loader.ParseModule(filepath.ToSlash(file), string(data))
	if err != nil {
		result.Error = err.Error()
		var parseErr *dslerrors.ParseError
		if errors.As(err, &parseErr) {
			result.Line = parseErr.Location.Line
			result.Column = parseErr.Location.Column
		}
		return result
	}

	result.Valid = true
	result.Imports = make([]string, 0, len(mod.ImportOrder))
	for _, alias := range mod.ImportOrder {
		result.Imports = append(result.Imports, fmt.Sprintf("%s=%s", alias, mod.Imports[alias]))
	}
	result.HasSuite = mod.TestSuite != nil
	for _, candidate := range mod.Candidates() {
		result.Exports++
		if candidate.ReExport {
			result.ReExports++
		}
	}
	return result
}

func printCheckResults(results []checkResult) {
	for _, result := range results {
		if !result.Valid {
			fmt.Printf("✗ %s: %s", result.File, result.Error)
			if result.Line > 0 {
				fmt.Printf(" (line %d, col %d)", result.Line, result.Column)
			}
			fmt.Println()
			continue
		}

		fmt.Printf("✓ %s: %d exports", result.File, result.Exports)
		if result.ReExports > 0 {
			fmt.Printf(" (%d re-exported)", result.ReExports)
		}
		if len(result.Imports) > 0 {
			fmt.Printf(", %d imports", len(result.Imports))
		}
		if result.HasSuite {
			fmt.Print(", test suite declared")
		}
		fmt.Println()
	}
}
