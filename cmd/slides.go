package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ezppt/deckview/internal/slidefilter"
	"github.com/ezppt/deckview/internal/viewer"
)

var slidesProject string

var slidesCmd = &cobra.Command{
	Use:   "slides",
	Short: "Read and write a project's rendered slide files",
	Long: `Works on the HTML files the preview displays, addressed by project name
(the directory under projects/) and file name.`,
}

var slidesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List slide files in display order",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		include, _ := cmd.Flags().GetStringSlice("match")
		exclude, _ := cmd.Flags().GetStringSlice("exclude")
		filter, err := slidefilter.New(include, exclude)
		if err != nil {
			return err
		}

		files, err := newClient(cfg).ListFiles(cmd.Context(), slidesProject)
		if err != nil {
			return err
		}
		seq := viewer.NewSequence(files)

		var rows [][]string
		for i, f := range seq.Files() {
			if filter.Match(f) {
				rows = append(rows, []string{strconv.Itoa(i + 1), f})
			}
		}
		if len(rows) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "No HTML files found in %s/html_files.\n", slidesProject)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"#", "File"}, rows, []columnAlignment{alignRight}))
		return nil
	},
}

var slidesGetCmd = &cobra.Command{
	Use:   "get <file>",
	Short: "Print a slide's markup",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		markup, err := newClient(cfg).FetchSlide(cmd.Context(), slidesProject, args[0])
		if err != nil {
			return err
		}
		if withBase, _ := cmd.Flags().GetBool("with-base"); withBase {
			markup = viewer.InjectBaseURL(markup, cfg.BackendURL+viewer.AssetBase(slidesProject))
		}
		fmt.Fprint(cmd.OutOrStdout(), markup)
		return nil
	},
}

var slidesSaveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Replace a slide's markup with the contents of a local file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		from, _ := cmd.Flags().GetString("from")
		data, err := os.ReadFile(from)
		if err != nil {
			return fmt.Errorf("reading %s: %w", from, err)
		}

		saveErr := newClient(cfg).SaveSlide(cmd.Context(), slidesProject, args[0], string(data))

		if record, _ := cmd.Flags().GetBool("journal"); record {
			database, store, err := openJournal(cfg)
			if err != nil {
				return err
			}
			defer database.Close()
			store.RecordSave(cmd.Context(), viewer.SaveAttempt{
				SessionID: "cli",
				Project:   slidesProject,
				File:      args[0],
				Bytes:     len(data),
				Err:       saveErr,
			})
		}

		if saveErr != nil {
			return fmt.Errorf("save failed: %s", viewer.ErrorText(saveErr))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (%d bytes)\n", args[0], len(data))
		return nil
	},
}

func init() {
	slidesCmd.PersistentFlags().StringVarP(&slidesProject, "project", "p", "", "project name")
	slidesCmd.MarkPersistentFlagRequired("project")

	slidesListCmd.Flags().StringSlice("match", nil, "only list files matching these glob patterns")
	slidesListCmd.Flags().StringSlice("exclude", nil, "skip files matching these glob patterns")
	slidesGetCmd.Flags().Bool("with-base", false, "inject a <base> tag so relative assets resolve against the backend")
	slidesSaveCmd.Flags().String("from", "", "local file with the new markup")
	slidesSaveCmd.MarkFlagRequired("from")
	slidesSaveCmd.Flags().Bool("journal", true, "record the attempt in the save journal")

	slidesCmd.AddCommand(slidesListCmd, slidesGetCmd, slidesSaveCmd)
	rootCmd.AddCommand(slidesCmd)
}
