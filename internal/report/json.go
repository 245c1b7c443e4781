package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/flixsearch/internal/model"
)

// JSONWriter outputs results as JSON for scripts and other tools.
// The "results" object keeps categories in first-seen order. HTML escaping
// is disabled so that download URLs keep a literal "&".
type JSONWriter struct {
	baseWriter

	// prefix and indent are passed to json.Encoder.SetIndent.
	// Both empty means compact output.
	prefix string
	indent string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent indents nested values with indent, each line starting with prefix.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.prefix = prefix
		w.indent = indent
	}
}

// WithPrettyPrint indents with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter writing to output.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteResults writes one JSON document for the search.
func (w *JSONWriter) WriteResults(results *Results) (int, error) {
	return w.encode(results)
}

// WriteServers writes the server statuses as a JSON array.
func (w *JSONWriter) WriteServers(statuses []model.ServerStatus) (int, error) {
	if statuses == nil {
		statuses = []model.ServerStatus{}
	}
	return w.encode(statuses)
}

// encode buffers the whole document so that nothing partial reaches the
// output when encoding fails. The document ends with a newline.
func (w *JSONWriter) encode(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent(w.prefix, w.indent)

	if err := enc.Encode(v); err != nil {
		return 0, err
	}
	return w.output.Write(buf.Bytes())
}
