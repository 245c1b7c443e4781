package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/nao1215/flixsearch/internal/aggregate"
	"github.com/nao1215/flixsearch/internal/backend"
	"github.com/nao1215/flixsearch/internal/config"
	flixlog "github.com/nao1215/flixsearch/internal/log"
	"github.com/nao1215/flixsearch/internal/transport"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for flixsearch.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flixsearch",
		Short: "Search many h5ai media servers at once",
		Long: `flixsearch sends one query to every configured h5ai file server in parallel,
keeps the downloadable media files (.mp3 .mp4 .mkv .iso .zip .avi) and
groups them by the categories of the server that listed them.

Servers that are down or slow are skipped; the search still returns
whatever the other servers found.

Without a configuration file the built-in DHAKA-FLIX server list is used.
Run "flixsearch init" to create one.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .flixsearch.yaml in current, XDG config or home directory)")

	// Add subcommands
	cmd.AddCommand(NewSearchCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewServersCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the configuration from defaults, the config file,
// .env and the environment. Command flags are applied by the caller.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	if err := config.LoadDotEnv(); err != nil {
		return nil, err
	}

	cfg, err := config.Load(configPath, os.LookupEnv)
	if err != nil {
		return nil, err
	}

	cfg.Verbose, err = cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyBackendFlags copies the backend flags the user actually set into cfg.
func applyBackendFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error

	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return err
		}
	}
	if flags.Changed("deadline") {
		if cfg.Deadline, err = flags.GetDuration("deadline"); err != nil {
			return err
		}
	}
	if flags.Changed("concurrency") {
		if cfg.Concurrency, err = flags.GetInt("concurrency"); err != nil {
			return err
		}
	}
	if flags.Changed("proxy") {
		if cfg.ProxyAddress, err = flags.GetString("proxy"); err != nil {
			return err
		}
	}
	if flags.Changed("rps") {
		if cfg.RequestsPerSecond, err = flags.GetFloat64("rps"); err != nil {
			return err
		}
	}
	return nil
}

// addBackendFlags registers the flags shared by every command that talks
// to the servers.
func addBackendFlags(cmd *cobra.Command) {
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each server request")
	cmd.Flags().Duration("deadline", 0,
		"Deadline for the whole search (default: timeout + 5s)")
	cmd.Flags().IntP("concurrency", "n", 0,
		"Maximum number of servers queried at once (default: all)")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy for server requests (e.g., 127.0.0.1:1080)")
	cmd.Flags().Float64("rps", 0,
		"Maximum outbound requests per second (0 = unlimited)")
}

// setupLogger creates a structured logger. quiet is the level used when
// --verbose is not set.
func setupLogger(w io.Writer, cfg *config.Config, quiet slog.Level) *slog.Logger {
	level := flixlog.Level(cfg.Verbose, quiet)
	if cfg.JSONLog {
		return flixlog.NewJSONLogger(w, level)
	}
	return flixlog.NewLogger(w, level)
}

// newAggregator wires the backend client and the registry into an Aggregator.
func newAggregator(cfg *config.Config, logger *slog.Logger) (*aggregate.Aggregator, *backend.Client, error) {
	reg, err := cfg.Registry()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid server list: %w", err)
	}

	httpClient, err := transport.NewHTTPClient(transport.Options{
		Timeout:      cfg.Timeout,
		ProxyAddress: cfg.ProxyAddress,
		UserAgent:    cfg.UserAgent,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	client := backend.NewClient(
		backend.WithHTTPClient(httpClient),
		backend.WithUserAgent(cfg.UserAgent),
		backend.WithMaxBodySize(cfg.MaxBodySize),
		backend.WithRateLimit(cfg.RequestsPerSecond),
		backend.WithLogger(logger),
	)

	agg := aggregate.New(reg, client,
		aggregate.WithConcurrency(cfg.Concurrency),
		aggregate.WithDeadline(cfg.EffectiveDeadline()),
		aggregate.WithLogger(logger),
	)

	return agg, client, nil
}
