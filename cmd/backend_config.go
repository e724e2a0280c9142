package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/ezppt/deckview/internal/backend"
)

var backendConfigCmd = &cobra.Command{
	Use:   "backend-config",
	Short: "View and change the generation backend's settings",
}

var backendConfigShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the backend's editable settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		settings, err := newClient(cfg).GetSettings(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), settingsTable(settings))
		return nil
	},
}

var backendConfigSetCmd = &cobra.Command{
	Use:   "set KEY=VALUE...",
	Short: "Update backend settings",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		client := newClient(cfg)

		current, err := client.GetSettings(cmd.Context())
		if err != nil {
			return err
		}
		updates, err := backend.ParseSettingUpdates(current.Meta, args)
		if err != nil {
			return err
		}
		if len(updates) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to update.")
			return nil
		}

		settings, err := client.UpdateSettings(cmd.Context(), updates)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d setting(s).\n", len(updates))
		fmt.Fprintln(cmd.OutOrStdout(), settingsTable(settings))
		return nil
	},
}

var backendConfigTestsCmd = &cobra.Command{
	Use:   "tests",
	Short: "List the connectivity checks the backend offers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		tests, err := newClient(cfg).ListSettingTests(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, 0, len(tests))
		for _, t := range tests {
			rows = append(rows, []string{t.Key, t.Label})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Key", "Check"}, rows, nil))
		return nil
	},
}

var backendConfigTestCmd = &cobra.Command{
	Use:   "test <key>",
	Short: "Run one connectivity check",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		result, err := newClient(cfg).RunSettingTest(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("check %s failed: %s", args[0], backend.Message(err))
		}
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Fprintf(cmd.OutOrStdout(), "Check %s passed\n%s\n", args[0], data)
		return nil
	},
}

// settingsTable renders settings grouped as the backend describes them.
// Values not covered by metadata are listed last.
func settingsTable(s *backend.Settings) string {
	seen := make(map[string]bool, len(s.Meta))
	var rows [][]string
	for _, m := range s.Meta {
		seen[m.Key] = true
		rows = append(rows, []string{m.Group, m.Key, formatSetting(s.Values[m.Key]), m.Label})
	}

	var extra []string
	for k := range s.Values {
		if !seen[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		rows = append(rows, []string{"", k, formatSetting(s.Values[k]), ""})
	}
	return renderTable([]string{"Group", "Key", "Value", "Description"}, rows, nil)
}

func formatSetting(v any) string {
	switch v := v.(type) {
	case nil:
		return "-"
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
}

func init() {
	backendConfigCmd.AddCommand(backendConfigShowCmd, backendConfigSetCmd, backendConfigTestsCmd, backendConfigTestCmd)
	rootCmd.AddCommand(backendConfigCmd)
}
