package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ezppt/deckview/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing project and slide tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		// Set version from the cmd package variable.
		mcpserver.Version = Version

		srv := mcpserver.NewServer(newClient(cfg))

		// The journal is optional: it only exists once the preview server has run.
		if _, err := os.Stat(journalPath(cfg)); err == nil {
			database, store, err := openJournal(cfg)
			if err != nil {
				return err
			}
			defer database.Close()
			srv.SetJournal(store)
		}

		fmt.Fprintf(os.Stderr, "deckview MCP server started on stdio (backend=%s)\n", cfg.BackendURL)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
