package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"earthworks/strwriter/pkg/cli"
	"earthworks/strwriter/pkg/export"
	"earthworks/strwriter/pkg/watch"
)

var watchFlags struct {
	layers []string
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-export layers whenever the source changes",
	Long: `Watch the source and re-export the affected layers after every change.

All selected layers are exported once on start. Changes are debounced by
watch.debounce_interval. Layers are written to {output_dir}/{layer}.str.
When telemetry.metrics.listen_address is set, /metrics, /health, /ready and
/version are served while watching.

Examples:
  strwriter watch
  strwriter watch --layer haul_roads --layer pit_shell`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSliceVarP(&watchFlags.layers, "layer", "l", nil, "layers to re-export (default watch.layers, or every line and point layer)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := currentApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	layers := a.cfg.Watch.Layers
	if len(watchFlags.layers) > 0 {
		layers = watchFlags.layers
	}
	base := a.defaultRequest("")
	runner := watch.NewRunner(a.exporter(nil), a.catalog, watch.RunnerConfig{
		Layers:    layers,
		TargetCRS: base.TargetCRS,
		Field:     base.Field,
		DefaultZ:  base.DefaultZ,
	}, a.logger)

	notifier := cli.NewNotifier(cmd.OutOrStdout(), cmd.ErrOrStderr())
	runner.OnResult(func(layer string, res *export.Result, err error) {
		a.observe(layer, res, err)
		if err != nil {
			notifier.Failure(err)
			return
		}
		notifier.Success(res.Message())
	})

	fw, err := watch.NewFileWatcher(&watch.FileWatcherConfig{
		Path:             a.cfg.Source.Path,
		DebounceInterval: a.cfg.Watch.DebounceInterval,
		Extensions:       a.cfg.Watch.Extensions,
		SkipHidden:       true,
	}, a.logger.Slog())
	if err != nil {
		return err
	}
	defer fw.Stop()

	a.serve(ctx, a.server())

	a.logger.Info("watching source", "path", a.cfg.Source.Path, "layers", layers)
	if err := runner.Watch(ctx, fw); err != nil && !errors.Is(err, context.Canceled) {
		return cli.NewCommandError("watch", err)
	}
	return nil
}
