package main

import (
	"github.com/spf13/cobra"

	"earthworks/strwriter/pkg/cli"
)

var historyFlags struct {
	limit  int
	format string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent exports",
	Long: `Show the most recent export runs recorded in the session database,
newest first. Failed and cancelled runs are included.

Examples:
  strwriter history
  strwriter history --limit 50 --format csv > runs.csv`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().IntVarP(&historyFlags.limit, "limit", "n", 0, "number of runs to show (default session.history_limit)")
	historyCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format (text, json, csv)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(historyFlags.format)
	if err != nil {
		return cli.NewConfigError("--format", err.Error())
	}

	a, err := currentApp(false)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.store == nil {
		return cli.NewConfigError("session.enabled", "session persistence is disabled")
	}

	limit := historyFlags.limit
	if limit <= 0 {
		limit = a.cfg.Session.HistoryLimit
	}

	runs, err := a.store.History(cmd.Context(), limit)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), cli.NewHistoryTable(runs))
}
