package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"earthworks/strwriter/pkg/cli"
	"earthworks/strwriter/pkg/export"
	"earthworks/strwriter/pkg/layer"
	"earthworks/strwriter/pkg/prompt"
)

var exportFlags struct {
	layer       string
	targetCRS   string
	field       string
	defaultZ    string
	output      string
	interactive bool
	all         bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a layer to a Surpac string file",
	Long: `Export a line or point layer to a Surpac string (.str) file.

Flags override the export section of the configuration. Without --output
the file is written to {output_dir}/{layer}.str; in interactive mode the
destination is asked for instead, and dismissing that prompt cancels the
export without error.

Examples:
  # Export one layer in its own CRS
  strwriter export --layer haul_roads

  # Reproject, label records with the ROAD_ID attribute and write to a file
  strwriter export --layer haul_roads --target-crs EPSG:3857 \
    --field ROAD_ID --output roads.str

  # Choose everything from prompts
  strwriter export --interactive

  # Export every line and point layer
  strwriter export --all`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVarP(&exportFlags.layer, "layer", "l", "", "layer to export")
	exportCmd.Flags().StringVarP(&exportFlags.targetCRS, "target-crs", "t", "", "output CRS, e.g. EPSG:3857 (empty keeps the layer CRS)")
	exportCmd.Flags().StringVarP(&exportFlags.field, "field", "f", "", "attribute written in the last record column")
	exportCmd.Flags().StringVarP(&exportFlags.defaultZ, "default-z", "z", "", "elevation used when a vertex has none")
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "destination file")
	exportCmd.Flags().BoolVarP(&exportFlags.interactive, "interactive", "i", false, "prompt for layer, CRS, field, elevation and destination")
	exportCmd.Flags().BoolVar(&exportFlags.all, "all", false, "export every line and point layer to the output directory")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFlags.all && (exportFlags.interactive || exportFlags.layer != "" || exportFlags.output != "") {
		return cli.NewConfigError("--all", "cannot be combined with --interactive, --layer or --output")
	}
	if !exportFlags.all && !exportFlags.interactive && exportFlags.layer == "" {
		return cli.NewConfigError("--layer", "a layer is required (or use --interactive or --all)")
	}

	a, err := currentApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := cli.SetupSignalHandler(cmd.Context())
	defer stop()

	req := applyExportFlags(cmd, a.defaultRequest(exportFlags.layer))
	notifier := cli.NewNotifier(cmd.OutOrStdout(), cmd.ErrOrStderr())

	if exportFlags.all {
		return exportAll(ctx, a.exporter(nil), a.catalog, req, notifier)
	}

	exporter := a.exporter(nil)
	if exportFlags.interactive {
		var state prompt.StateStore
		if a.store != nil {
			state = a.store
		}
		dialog := prompt.NewDialog(prompt.NewSurveyDriver(), a.catalog, a.registry, state)
		req, err = dialog.Ask(ctx, req)
		if err != nil {
			return err
		}
		if req.Output == "" {
			exporter = a.exporter(dialog)
		}
	}

	res, err := exporter.Export(ctx, req)
	if err != nil {
		return err
	}
	notifier.Success(res.Message())
	return nil
}

// applyExportFlags overrides req with the flags set on cmd.
func applyExportFlags(cmd *cobra.Command, req export.Request) export.Request {
	flags := cmd.Flags()
	if flags.Changed("target-crs") {
		req.TargetCRS = exportFlags.targetCRS
	}
	if flags.Changed("field") {
		req.Field = exportFlags.field
	}
	if flags.Changed("default-z") {
		req.DefaultZ = exportFlags.defaultZ
	}
	req.Output = exportFlags.output
	return req
}

// exportAll exports every supported layer, reporting each outcome. It fails
// when any layer fails.
func exportAll(ctx context.Context, exporter *export.Exporter, catalog layer.Catalog, base export.Request, notifier *cli.Notifier) error {
	layers, err := catalog.Layers(ctx)
	if err != nil {
		return err
	}
	layers = layer.Supported(layers)
	if len(layers) == 0 {
		return fmt.Errorf("no line or point layers found")
	}

	progress := cli.NewProgressReporter(os.Stderr)
	progress.Start(len(layers))

	var failed int
	for _, l := range layers {
		req := base
		req.Layer = l.Name
		res, err := exporter.Export(ctx, req)
		if err != nil {
			if cli.IsSilent(err) || ctx.Err() != nil {
				progress.Finish()
				return err
			}
			failed++
			progress.Failed(l.Name, err)
			continue
		}
		progress.Done(l.Name)
		notifier.Success(res.Message())
	}
	progress.Finish()

	if failed > 0 {
		return fmt.Errorf("%d of %d layers failed to export", failed, len(layers))
	}
	return nil
}
