package main

import (
	"runtime"

	"github.com/spf13/cobra"

	"earthworks/strwriter/pkg/cli"
)

// Set with -ldflags "-X main.Version=... -X main.GitCommit=... -X main.BuildDate=...".
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionFlags struct {
	format string
}

// buildInfo describes the running binary. It renders as key/value rows in
// text and CSV output.
type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

func currentBuildInfo() buildInfo {
	return buildInfo{
		Version:   Version,
		Commit:    GitCommit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

func (b buildInfo) Header() []string { return nil }

func (b buildInfo) Rows() [][]string {
	return [][]string{
		{"version", b.Version},
		{"commit", b.Commit},
		{"build_date", b.BuildDate},
		{"go_version", b.GoVersion},
		{"platform", b.Platform},
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Example: `  strwriter version
  strwriter version --format json`,
	Args: cobra.NoArgs,
	// Needs no configuration file.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().StringVar(&versionFlags.format, "format", "text", "output format (text, json, csv)")
}

func runVersion(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(versionFlags.format)
	if err != nil {
		return cli.NewConfigError("--format", err.Error())
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), currentBuildInfo())
}
