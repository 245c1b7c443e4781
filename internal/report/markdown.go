package report

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/flixsearch/internal/model"
	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// MarkdownWriter outputs results in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteResults outputs the search results as one table per category.
func (w *MarkdownWriter) WriteResults(results *Results) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("flixsearch Results")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Query", "`" + results.Query + "`"},
			{"Searched", results.SearchedAt.Format("2006-01-02 15:04:05 MST")},
			{"Servers", strconv.Itoa(results.Servers)},
			{"Files", strconv.Itoa(results.Total)},
			{"Elapsed", results.Elapsed.Round(time.Millisecond).String()},
		},
	})
	md.PlainText("")

	if results.Grouped.IsEmpty() {
		md.Note("No files matched the query.")
		md.PlainText("")
	} else {
		w.writePieChart(md, results.Grouped)
	}

	for _, group := range results.Grouped.Groups() {
		md.H2f("%s (%d)", group.Category, len(group.Items))
		md.PlainText("")

		rows := make([][]string, 0, len(group.Items))
		for _, item := range group.Items {
			rows = append(rows, []string{
				markdown.Link(escapeCell(item.Name), item.URL),
				item.Extension,
				item.Server,
			})
		}
		md.Table(markdown.TableSet{
			Header: []string{"File", "Type", "Server"},
			Rows:   rows,
		})
		md.PlainText("")
	}

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteServers outputs the server statuses as a table.
func (w *MarkdownWriter) WriteServers(statuses []model.ServerStatus) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("flixsearch Servers")
	md.PlainText("")

	down := 0
	rows := make([][]string, 0, len(statuses))
	for _, s := range statuses {
		if !s.Healthy() {
			down++
		}
		rows = append(rows, []string{
			s.Server,
			s.URL,
			statusText(s),
			s.Latency.Round(time.Millisecond).String(),
			escapeCell(s.Title),
		})
	}

	if down > 0 {
		md.Warningf("%d of %d server(s) are not serving h5ai.", down, len(statuses))
	} else {
		md.Tip("All servers are online.")
	}
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Server", "URL", "Status", "Latency", "Title"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writePieChart writes a mermaid pie chart of files per category.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, grouped *model.GroupedResults) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Files per Category"),
		piechart.WithShowData(true),
	)

	for _, group := range grouped.Groups() {
		chart.LabelAndIntValue(group.Category, uint64(len(group.Items)))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Generated by [flixsearch](https://github.com/nao1215/flixsearch)*")
}

// escapeCell keeps a value from breaking the table layout.
func escapeCell(s string) string {
	return strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
}
