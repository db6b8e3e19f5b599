package main

import (
	"os"

	"github.com/spf13/cobra"

	"earthworks/strwriter/pkg/cli"
	"earthworks/strwriter/pkg/config"
	"earthworks/strwriter/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile    string
	sourcePath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "strwriter",
	Short: "Export vector layers to Surpac string files",
	Long: `Strwriter writes line and point layers as Surpac string (.str) files.

Layers are read from a GeoJSON file or a directory of GeoJSON files. Each
export reprojects the coordinates to the requested CRS, takes elevations
from the vertex Z, the ELEV attribute or a default, and writes one record
per vertex.

Exports can be run once, interactively, on every change to the source, or
on a cron schedule. Runs are recorded in a local session database.`,
	Version:           Version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command and exits with the code matching the error.
func Execute() {
	err := rootCmd.Execute()
	cli.NewNotifier(os.Stdout, os.Stderr).Failure(err)
	os.Exit(cli.ExitCode(err))
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default "+config.DefaultConfigFile+" if present)")
	rootCmd.PersistentFlags().StringVarP(&sourcePath, "source", "s", "", "override source.path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig initializes the global configuration and the default logger.
func loadConfig(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(config.ResolvePath(cfgFile)); err != nil {
		return err
	}
	cfg := config.GetConfig()

	if sourcePath != "" {
		cfg.Source.Path = sourcePath
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}
	logger.SetDefault()
	return nil
}

func newLogger(cfg *config.Config) (*logging.Logger, error) {
	lc := cfg.Telemetry.Logging
	return logging.New(logging.Config{
		Level:     lc.Level,
		Format:    lc.Format,
		AddSource: lc.AddSource,
		File: logging.FileConfig{
			Path:       lc.File.Path,
			MaxSizeMB:  lc.File.MaxSizeMB,
			MaxBackups: lc.File.MaxBackups,
			MaxAgeDays: lc.File.MaxAgeDays,
			Compress:   lc.File.Compress,
		},
	})
}
