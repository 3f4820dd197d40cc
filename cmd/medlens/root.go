package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/medlens/internal/api"
	"github.com/jackzampolin/medlens/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
	verbose      bool
)

var rootCmd = &cobra.Command{
	Use:   "medlens",
	Short: "Medical document extraction and reanalysis",
	Long: `medlens turns photographed or scanned lab reports into structured records.

It can:
  - Extract patient, date and per-test results from an image or PDF
  - Rescore a corrected record after a user edits values
  - Look up drug label information in the FDA database

Run "medlens serve" for the HTTP API, or use the local commands directly.`,
	Version:       version.GitRelease,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return api.SetOutputFormat(outputFormat)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.medlens/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "medlens home directory (default: ~/.medlens)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "json", "output format: json or yaml",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&verbose, "verbose", "v", false, "debug logging",
	)

	rootCmd.AddCommand(versionCmd)
}
