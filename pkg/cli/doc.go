/*
Package cli provides command-line interface utilities for the mpl-builtins
command.

Output Formatting:

Commands print either plain values or a Table. Text output aligns table
columns; JSON and YAML render a table as a list of objects; CSV accepts
tables only:

	format, err := cli.ParseOutputFormat(flagValue)
	if err != nil {
		return err
	}
	table := &cli.Table{Headers: []string{"NAME", "ARITY"}}
	table.Rows = append(table.Rows, []string{"base64.decode", "1"})
	return cli.NewFormatter(format).FormatTo(os.Stdout, table)

Progress Reporting:

For long-running exports, report progress on stderr:

	progress := cli.NewProgressReporter(os.Stderr, "records")
	progress.Start(total)
	progress.Update(n)
	progress.Finish()

Errors and Exit Codes:

ConfigError, CommandError and CallError carry the failure; ExitCode maps them
to the process exit status.

Signal Handling:

For graceful shutdown on SIGINT/SIGTERM:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
