/*
Package cli provides command-line helpers for sdclint.

The cli package includes the report renderers, the progress reporter, exit
code mapping and signal handling used by the sdclint command.

Output Formatting:

Reports render as an aligned table (default), plain text, JSON or CSV:

	formatter := cli.NewFormatter(cli.FormatJSON)
	if err := formatter.FormatTo(os.Stdout, cli.NewReportView(report)); err != nil {
		return err
	}

Table and CSV output take any Tabular value; text output uses String when
the value has one.

Progress Reporting:

Batch runs can show progress on stderr:

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(total)
	progress.Update(done)
	progress.Finish()

Exit Codes:

ExitCode maps command errors to 0 (clean), 1 (diagnostics at or above the
fail-on severity), 2 (usage or configuration error) and 3 (internal error).

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
