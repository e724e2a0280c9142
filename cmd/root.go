package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ezppt/deckview/internal/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "deckview",
	Short: "Preview, edit and manage generated slide decks",
	Long: `deckview serves a browser preview for slide decks produced by the
presentation generation backend. Slides can be browsed, edited in place
and saved back. The CLI also follows generation progress, triggers
PDF/PPTX exports and exposes projects to AI agents via MCP.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
