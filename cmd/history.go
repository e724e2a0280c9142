package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ezppt/deckview/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show slide saves recorded by the preview server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if _, err := os.Stat(journalPath(cfg)); os.IsNotExist(err) {
			fmt.Fprintln(cmd.OutOrStdout(), "No saves recorded yet.")
			return nil
		}
		database, store, err := openJournal(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		if prune, _ := cmd.Flags().GetDuration("prune"); prune > 0 {
			n, err := store.DeleteBefore(cmd.Context(), time.Now().Add(-prune))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d entries older than %s.\n", n, prune)
			return nil
		}

		filter := journal.Filter{}
		filter.Project, _ = cmd.Flags().GetString("project")
		filter.File, _ = cmd.Flags().GetString("file")
		filter.Limit, _ = cmd.Flags().GetInt("limit")
		if failed, _ := cmd.Flags().GetBool("failed"); failed {
			filter.Outcome = journal.OutcomeFailed
		}
		if since, _ := cmd.Flags().GetDuration("since"); since > 0 {
			t := time.Now().Add(-since)
			filter.Since = &t
		}

		entries, err := store.Query(cmd.Context(), filter)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matching saves.")
			return nil
		}

		rows := make([][]string, 0, len(entries))
		for _, e := range entries {
			rows = append(rows, []string{
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Project,
				e.File,
				strconv.Itoa(e.Bytes),
				string(e.Outcome),
				e.Message,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"Time", "Project", "File", "Bytes", "Outcome", "Message"},
			rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
		))
		return nil
	},
}

func init() {
	historyCmd.Flags().String("project", "", "only show saves for this project")
	historyCmd.Flags().String("file", "", "only show saves for this file")
	historyCmd.Flags().Int("limit", 50, "maximum number of entries")
	historyCmd.Flags().Bool("failed", false, "only show failed saves")
	historyCmd.Flags().Duration("since", 0, "only show saves newer than this, e.g. 24h")
	historyCmd.Flags().Duration("prune", 0, "delete entries older than this instead of listing")
	rootCmd.AddCommand(historyCmd)
}
