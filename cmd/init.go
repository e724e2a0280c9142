package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ezppt/deckview/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize deckview configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to point deckview at the generation backend and writes a .deckview.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard(cfgFile)
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
