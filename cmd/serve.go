package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ezppt/deckview/internal/journal"
	"github.com/ezppt/deckview/internal/preview"
	"github.com/ezppt/deckview/internal/server"
)

var (
	servePort     int
	serveNoRecord bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the slide preview server",
	Long: `Starts the local preview server. Open http://localhost:<port>/ to list
projects, or /preview?project=<name> to browse, edit and save a deck's slides.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}

		previewCfg := preview.Config{
			Viewer:       viewerOptions(cfg),
			PollInterval: cfg.Dashboard.PollInterval,
		}

		srv := server.New(server.Config{
			Port:           port,
			AllowAll:       cfg.Server.AllowAll,
			HandlerTimeout: cfg.Server.HandlerTimeout,
		})
		r := srv.Router()

		// Save Journal
		if !serveNoRecord {
			database, store, err := openJournal(cfg)
			if err != nil {
				return err
			}
			defer database.Close()
			journal.RegisterRoutes(r, store)
			previewCfg.Recorder = store
			fmt.Fprintf(os.Stderr, "  Journal: %s\n", database.Path())
		}

		// Preview pages, websocket bridge and backend proxy
		pv, err := preview.New(newClient(cfg), previewCfg)
		if err != nil {
			return err
		}
		pv.RegisterRoutes(r)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			pv.Sessions().CloseAll()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		fmt.Fprintf(os.Stderr, "deckview server %s starting on port %d\n", Version, port)
		fmt.Fprintf(os.Stderr, "  Backend: %s\n", cfg.BackendURL)

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8090, "port to listen on (overrides server.port)")
	serveCmd.Flags().BoolVar(&serveNoRecord, "no-journal", false, "do not record save attempts")
	rootCmd.AddCommand(serveCmd)
}
