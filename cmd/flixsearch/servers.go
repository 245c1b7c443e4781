package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/nao1215/flixsearch/internal/filetype"
	"github.com/nao1215/flixsearch/internal/report"
	"github.com/spf13/cobra"
)

// NewServersCmd creates the servers command.
func NewServersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "servers",
		Short: "List the configured servers",
		Long: `Servers prints the server list that searches are sent to, in search order.

With --check every server is probed: flixsearch fetches its index page and
reports whether it is reachable and serving h5ai.

Examples:
  # List servers
  flixsearch servers

  # Probe servers and print a Markdown table
  flixsearch servers --check --markdown`,
		Args: cobra.NoArgs,
		RunE: runServersCmd,
	}

	addBackendFlags(cmd)
	cmd.Flags().Bool("check", false, "Probe every server")
	cmd.Flags().BoolP("json", "j", false, "Output JSON (with --check)")
	cmd.Flags().BoolP("markdown", "m", false, "Output Markdown (with --check)")

	return cmd
}

// runServersCmd executes the servers command.
func runServersCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := applyBackendFlags(cmd, cfg); err != nil {
		return err
	}
	if cfg.JSONReport, err = cmd.Flags().GetBool("json"); err != nil {
		return err
	}
	if cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown"); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	check, err := cmd.Flags().GetBool("check")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg, slog.LevelWarn)

	agg, client, err := newAggregator(cfg, logger)
	if err != nil {
		return err
	}

	if !check {
		out := cmd.OutOrStdout()
		if cfg.ConfigFilePath != "" {
			fmt.Fprintf(out, "Servers from %s:\n\n", cfg.ConfigFilePath)
		} else {
			fmt.Fprintf(out, "Built-in servers:\n\n")
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tURL\tCATEGORIES")
		for _, s := range agg.Registry().Servers() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Name, s.URL, strings.Join(s.Categories, ", "))
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		fmt.Fprintf(out, "\nCategories: %s\n", strings.Join(agg.Registry().Categories(), ", "))
		fmt.Fprintf(out, "Listed file types: %s\n", strings.Join(filetype.AllowedExtensions(), " "))
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	statuses := agg.Probe(ctx, client)
	return outputResults(cmd.OutOrStdout(), cfg, func(w report.Writer) error {
		_, err := w.WriteServers(statuses)
		return err
	})
}
