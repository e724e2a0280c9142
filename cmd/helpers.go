package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ezppt/deckview/internal/backend"
	"github.com/ezppt/deckview/internal/config"
	"github.com/ezppt/deckview/internal/db"
	"github.com/ezppt/deckview/internal/journal"
	"github.com/ezppt/deckview/internal/viewer"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `deckview init` to create a config file", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", cfgFile, err)
	}
	return cfg, nil
}

// newClient creates a backend client from config.
func newClient(cfg *config.Config) *backend.Client {
	return backend.New(cfg.BackendURL, backend.WithTimeout(cfg.RequestTimeout))
}

// viewerOptions maps the viewer config section onto session options.
func viewerOptions(cfg *config.Config) viewer.Options {
	opts := viewer.DefaultOptions()
	opts.PreloadCount = cfg.Viewer.PreloadCount
	opts.MaxConcurrentPreloads = cfg.Viewer.MaxConcurrentPreloads
	opts.PrefetchDebounce = cfg.Viewer.PrefetchDebounce
	opts.SaveExitDelay = cfg.Viewer.SaveExitDelay
	opts.WheelThrottle = cfg.Viewer.WheelThrottle
	if verbose {
		opts.Logf = log.Printf
	}
	return opts
}

// journalPath returns the location of the save journal database.
func journalPath(cfg *config.Config) string {
	return filepath.Join(cfg.DataDir, "deckview.db")
}

// openJournal opens the save journal, creating the data directory if needed.
func openJournal(cfg *config.Config) (*db.DB, *journal.Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating data directory: %w", err)
	}
	database, err := db.Open(journalPath(cfg))
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	return database, journal.NewStore(database), nil
}

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// renderTable formats rows as a rounded box table.
func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}
