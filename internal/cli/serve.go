package cli

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/allenwoods/naive-coreterra/internal/config"
	"github.com/allenwoods/naive-coreterra/internal/database"
	"github.com/allenwoods/naive-coreterra/internal/metrics"
	"github.com/allenwoods/naive-coreterra/internal/server"
	"github.com/allenwoods/naive-coreterra/internal/store"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			slog.SetDefault(newLogger(cfg))

			m := metrics.New()
			dataStore := store.New(cfg.DataDir, store.WithReloadHook(m.DocumentReloaded))

			db, err := database.Open(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			if err := database.MigrateContext(cmd.Context(), db); err != nil {
				return fmt.Errorf("running migrations: %w", err)
			}

			srv, err := server.New(cfg, dataStore, db, m)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			slog.Info("serving data directory", "path", dataStore.DataDir(), "documents", len(dataStore.Documents()))
			return srv.Start(ctx)
		},
	}
}

func newLogger(cfg config.Config) *slog.Logger {
	options := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, options))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, options))
}
