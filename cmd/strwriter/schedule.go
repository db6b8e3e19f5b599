package main

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"earthworks/strwriter/pkg/cli"
	"earthworks/strwriter/pkg/export"
	"earthworks/strwriter/pkg/schedule"
)

var scheduleFlags struct {
	runNow string
	list   bool
	format string
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the configured export jobs on their cron schedules",
	Long: `Run the export jobs listed under schedule.jobs until interrupted.

Each job names a layer and a standard 5-field cron expression. Unset job
fields fall back to the export section. Jobs never overlap: a job that
comes due while another runs waits for it.

Examples:
  # Run until interrupted
  strwriter schedule

  # Show the jobs and when they next run
  strwriter schedule --list

  # Run one job now and exit
  strwriter schedule --run-now nightly-roads`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleFlags.runNow, "run-now", "", "run the named job once and exit")
	scheduleCmd.Flags().BoolVar(&scheduleFlags.list, "list", false, "list the jobs and exit")
	scheduleCmd.Flags().StringVar(&scheduleFlags.format, "format", "text", "output format for --list (text, json, csv)")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	a, err := currentApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	jobs := schedule.JobsFromConfig(a.cfg)
	if err := schedule.Validate(jobs); err != nil {
		return cli.NewConfigError("schedule.jobs", err.Error())
	}

	if scheduleFlags.list {
		format, err := cli.ParseOutputFormat(scheduleFlags.format)
		if err != nil {
			return cli.NewConfigError("--format", err.Error())
		}
		return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), newJobTable(jobs, time.Now()))
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	notifier := cli.NewNotifier(cmd.OutOrStdout(), cmd.ErrOrStderr())
	scheduler := schedule.NewScheduler(a.exporter(nil), jobs, a.logger)

	if scheduleFlags.runNow != "" {
		res, err := scheduler.RunNow(ctx, scheduleFlags.runNow)
		if err != nil {
			return err
		}
		notifier.Success(res.Message())
		return nil
	}

	if len(jobs) == 0 {
		return cli.NewConfigError("schedule.jobs", "no jobs configured")
	}

	scheduler.OnResult(func(job schedule.Job, res *export.Result, err error) {
		a.observe(job.Request.Layer, res, err)
		if err != nil {
			notifier.Failure(fmt.Errorf("job %s: %w", job.Name, err))
			return
		}
		notifier.Success(res.Message())
	})

	a.serve(ctx, a.server())

	if err := scheduler.Start(ctx); err != nil {
		return cli.NewCommandError("schedule", err)
	}
	defer scheduler.Stop()

	for _, job := range jobs {
		if next := scheduler.NextRun(job.Name); next != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: next run %s\n", job.Name, next.Format(time.DateTime))
		}
	}

	<-ctx.Done()
	return nil
}

// jobRow describes one scheduled job.
type jobRow struct {
	Name    string `json:"name"`
	Cron    string `json:"cron"`
	Layer   string `json:"layer"`
	Output  string `json:"output,omitempty"`
	NextRun string `json:"next_run"`
}

type jobTable []jobRow

func newJobTable(jobs []schedule.Job, now time.Time) jobTable {
	t := make(jobTable, 0, len(jobs))
	for _, job := range jobs {
		row := jobRow{
			Name:   job.Name,
			Cron:   job.Cron,
			Layer:  job.Request.Layer,
			Output: job.Request.Output,
		}
		if sched, err := cron.ParseStandard(job.Cron); err == nil {
			row.NextRun = sched.Next(now).Format(time.DateTime)
		}
		t = append(t, row)
	}
	return t
}

func (t jobTable) Header() []string {
	return []string{"NAME", "CRON", "LAYER", "OUTPUT", "NEXT RUN"}
}

func (t jobTable) Rows() [][]string {
	rows := make([][]string, 0, len(t))
	for _, r := range t {
		rows = append(rows, []string{r.Name, r.Cron, r.Layer, r.Output, r.NextRun})
	}
	return rows
}
