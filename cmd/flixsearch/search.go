package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/nao1215/flixsearch/internal/aggregate"
	"github.com/nao1215/flixsearch/internal/config"
	"github.com/nao1215/flixsearch/internal/report"
	"github.com/spf13/cobra"
)

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Search every server and print the grouped results",
		Long: `Search sends the query to every configured server in parallel and prints
the files found, grouped by category.

All arguments are joined with spaces to form the query. Matching is
case-insensitive and done by the servers themselves.

Examples:
  # Search all servers
  flixsearch search big buck bunny

  # Output JSON
  flixsearch search --json bunny

  # Write a Markdown report to a file (the text view still goes to stdout)
  flixsearch search --markdown -o reports/bunny.md bunny

  # Only search two servers
  flixsearch search -s DHAKA-FLIX-7,DHAKA-FLIX-14 bunny

  # Use a shorter per-server timeout and at most 2 parallel requests
  flixsearch search -t 5s -n 2 bunny`,
		Args: cobra.MinimumNArgs(1),
		RunE: runSearchCmd,
	}

	addBackendFlags(cmd)

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Also write results to the specified file path (creates directories if needed)")
	cmd.Flags().StringSliceP("server", "s", nil,
		"Only search these servers (repeatable or comma separated)")

	return cmd
}

// runSearchCmd executes the search command.
func runSearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildSearchConfig(cmd)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg, slog.LevelWarn)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runSearch(ctx, cmd.OutOrStdout(), cfg, strings.Join(args, " "), logger)
}

// buildSearchConfig resolves the configuration and applies the search flags.
func buildSearchConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	if err := applyBackendFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.ServerNames, err = cmd.Flags().GetStringSlice("server")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// runSearch runs one search and writes the results.
func runSearch(ctx context.Context, stdout io.Writer, cfg *config.Config, query string, logger *slog.Logger) error {
	agg, _, err := newAggregator(cfg, logger)
	if err != nil {
		return err
	}

	start := time.Now()
	grouped, err := agg.Aggregate(ctx, query)
	if err != nil {
		if errors.Is(err, aggregate.ErrEmptyQuery) {
			return errors.New("query must not be empty")
		}
		return err
	}

	results := report.NewResults(strings.TrimSpace(query), start, time.Since(start), agg.Registry().Len(), grouped)
	return outputResults(stdout, cfg, func(w report.Writer) error {
		_, err := w.WriteResults(results)
		return err
	})
}

// outputResults hands the writer for the configured format to write.
// Without a report file that writer prints to stdout. With one, the file
// gets the configured format and stdout still gets the text view.
func outputResults(stdout io.Writer, cfg *config.Config, write func(report.Writer) error) error {
	if cfg.ReportFile == "" {
		return write(newReportWriter(stdout, cfg))
	}

	dir := filepath.Dir(cfg.ReportFile)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	return write(report.NewMultiWriter(
		newReportWriter(f, cfg),
		report.NewSimpleWriter(stdout, report.WithVerbose(cfg.Verbose)),
	))
}

// newReportWriter returns the writer for the configured report format.
func newReportWriter(output io.Writer, cfg *config.Config) report.Writer {
	switch {
	case cfg.JSONReport:
		return report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		return report.NewMarkdownWriter(output)
	default:
		return report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}
}
