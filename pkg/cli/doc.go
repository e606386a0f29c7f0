/*
Package cli provides command-line interface utilities for Covenant.

The cli package includes output formatters, progress reporters, and common
CLI helpers used by the covenant command.

Output Formatting:

Command results can be rendered as plain text or JSON:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, report); err != nil {
		return err
	}

Progress Reporting:

Long test-suite runs report per-target progress:

	progress := cli.NewProgressReporter(os.Stdout)
	progress.Start(int64(len(cases)))
	for i := range cases {
		// run target
		progress.Update(int64(i + 1))
	}
	progress.Finish()

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx := cli.SetupSignalHandler()
*/
package cli
