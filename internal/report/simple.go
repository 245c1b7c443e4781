package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/flixsearch/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// lineWidth is the width of the separator lines.
const lineWidth = 70

// SimpleWriter outputs human-readable text for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds the icon class and server of every item.
	verbose bool

	// upper renders category headings.
	upper cases.Caser
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		upper:      cases.Upper(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteResults outputs the search results grouped by category.
func (w *SimpleWriter) WriteResults(results *Results) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "FLIXSEARCH RESULTS")

	fmt.Fprintf(&sb, "Query:      %s\n", results.Query)
	fmt.Fprintf(&sb, "Searched:   %s\n", results.SearchedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&sb, "Servers:    %d\n", results.Servers)
	fmt.Fprintf(&sb, "Files:      %d\n", results.Total)
	fmt.Fprintf(&sb, "Elapsed:    %s\n\n", results.Elapsed.Round(time.Millisecond))

	if results.Grouped.IsEmpty() {
		sb.WriteString("  No files found\n\n")
	}

	for _, group := range results.Grouped.Groups() {
		w.writeSection(&sb, fmt.Sprintf("%s (%d)", w.upper.String(group.Category), len(group.Items)))
		for _, item := range group.Items {
			fmt.Fprintf(&sb, "  * %s\n", item.Name)
			fmt.Fprintf(&sb, "    %s\n", item.URL)
			if w.verbose {
				fmt.Fprintf(&sb, "    Server: %s  Type: %s  Icon: %s\n", item.Server, item.Extension, item.Icon)
			}
		}
		sb.WriteString("\n")
	}

	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// WriteServers outputs one line per server.
func (w *SimpleWriter) WriteServers(statuses []model.ServerStatus) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "FLIXSEARCH SERVERS")

	if len(statuses) == 0 {
		sb.WriteString("  No servers configured\n\n")
	}

	for _, s := range statuses {
		indicator := "+"
		if !s.Healthy() {
			indicator = "!"
		}
		fmt.Fprintf(&sb, "[%s] %-16s %-20s %s\n", indicator, s.Server, statusText(s), s.Latency.Round(time.Millisecond))
		fmt.Fprintf(&sb, "    %s\n", s.URL)
		if s.Title != "" && w.verbose {
			fmt.Fprintf(&sb, "    Title: %s\n", s.Title)
		}
		if s.Error != "" {
			fmt.Fprintf(&sb, "    Error: %s\n", s.Error)
		}
	}

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

// writeBanner writes a title framed by "=" lines.
func (w *SimpleWriter) writeBanner(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n")
	pad := max((lineWidth-len(title))/2, 0)
	sb.WriteString(strings.Repeat(" ", pad))
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", lineWidth))
	sb.WriteString("\n\n")
}

// writeSection writes a section heading framed by "-" lines.
func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", lineWidth))
	sb.WriteString("\n\n")
}
