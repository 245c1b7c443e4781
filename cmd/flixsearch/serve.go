package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nao1215/flixsearch/internal/model"
	"github.com/nao1215/flixsearch/internal/web"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds graceful shutdown of the web server.
const shutdownTimeout = 10 * time.Second

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web search UI",
		Long: `Serve starts an HTTP server with a search page and a JSON API.

Routes:
  GET /                   search form
  GET /search?query=...   grouped results page
  GET /api/search?query=  grouped results as JSON
  GET /api/servers        probe every server
  GET /healthz            liveness check

Examples:
  # Listen on the default address (:5000)
  flixsearch serve

  # Listen on localhost only and log as JSON
  flixsearch serve --listen 127.0.0.1:8080 --json-log`,
		Args: cobra.NoArgs,
		RunE: runServeCmd,
	}

	addBackendFlags(cmd)
	cmd.Flags().StringP("listen", "l", "", "Listen address (default: :5000)")
	cmd.Flags().Bool("json-log", false, "Write logs as JSON")

	return cmd
}

// runServeCmd executes the serve command.
func runServeCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyBackendFlags(cmd, cfg); err != nil {
		return err
	}
	if cmd.Flags().Changed("listen") {
		if cfg.ListenAddress, err = cmd.Flags().GetString("listen"); err != nil {
			return err
		}
	}
	if cfg.JSONLog, err = cmd.Flags().GetBool("json-log"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg, slog.LevelInfo)
	slog.SetDefault(logger)

	agg, client, err := newAggregator(cfg, logger)
	if err != nil {
		return err
	}

	srv, err := web.NewServer(cfg.ListenAddress, agg,
		web.WithLogger(logger),
		web.WithVersion(getVersion()),
		web.WithProbe(func(ctx context.Context) []model.ServerStatus {
			return agg.Probe(ctx, client)
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create web server: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "flixsearch listening on %s (%d servers)\n", srv.Addr(), agg.Registry().Len())

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop web server: %w", err)
	}
	return <-errCh
}
