/*
Package cli provides command-line helpers for the strwriter command.

Output Formatting:

Listing commands support text, JSON and CSV output. Tabular results
implement Table so the text formatter can align them and the CSV formatter
can write them row by row:

	formatter := cli.NewFormatter(cli.FormatCSV)
	if err := formatter.FormatTo(os.Stdout, layers); err != nil {
		return err
	}

Notifications:

Every export ends with one line, styled with lipgloss:

	n := cli.NewNotifier(os.Stdout, os.Stderr)
	n.Success(res.Message())  // ✓ Layer haul_roads saved as haul_roads.str
	n.Failure(err)            // ✗ Layer benches not found.

A cancelled save prompt prints nothing and exits 0; see IsSilent and
ExitCode.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
