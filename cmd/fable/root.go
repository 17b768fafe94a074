package main

import (
	"github.com/spf13/cobra"

	"github.com/jackzampolin/fable/internal/api"
	"github.com/jackzampolin/fable/version"
)

var (
	cfgFile      string
	homeDir      string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "fable",
	Short: "Picture-book builder with LLM-written stories and generated illustrations",
	Long: `Fable builds illustrated children's books through a staged pipeline:
brief, story concepts, characters, page outline, page text, image
prompts, generated images, and a final PDF export.

Text stages call an LLM provider directly; illustrations are dispatched
to an external workflow engine that delivers results back to the server
as they finish.`,
	Version: version.GitRelease,
}

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile, "config", "", "config file (default: ./config.yaml or ~/.fable/config.yaml)",
	)
	rootCmd.PersistentFlags().StringVar(
		&homeDir, "home", "", "fable home directory (default: ~/.fable)",
	)
	rootCmd.PersistentFlags().StringVarP(
		&outputFormat, "output", "o", "yaml", "output format: yaml or json",
	)

	// Set output format before any command runs
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		api.SetOutputFormat(outputFormat)
	}

	rootCmd.AddCommand(versionCmd)
}
