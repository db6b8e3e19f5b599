package main

import (
	"github.com/spf13/cobra"

	"earthworks/strwriter/pkg/cli"
	"earthworks/strwriter/pkg/layer"
)

var layersFlags struct {
	format string
	all    bool
}

var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "List the layers in the source",
	Long: `List the layers found in the configured source.

Only line and point layers can be exported; polygon and mixed layers are
listed with --all.

Examples:
  strwriter layers
  strwriter layers --all --format json
  strwriter layers --source ./survey --format csv`,
	RunE: runLayers,
}

func init() {
	rootCmd.AddCommand(layersCmd)

	layersCmd.Flags().StringVar(&layersFlags.format, "format", "text", "output format (text, json, csv)")
	layersCmd.Flags().BoolVar(&layersFlags.all, "all", false, "include layers that cannot be exported")
}

func runLayers(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(layersFlags.format)
	if err != nil {
		return cli.NewConfigError("--format", err.Error())
	}

	a, err := currentApp(true)
	if err != nil {
		return err
	}
	defer a.Close()

	layers, err := a.catalog.Layers(cmd.Context())
	if err != nil {
		return err
	}
	if !layersFlags.all {
		layers = layer.Supported(layers)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), cli.NewLayerTable(layers))
}
