package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/flixsearch/internal/model"
)

// Results is one finished search ready to be rendered.
type Results struct {
	// Query is the (trimmed) query that was searched for.
	Query string `json:"query"`

	// SearchedAt is when the search started.
	SearchedAt time.Time `json:"searched_at"`

	// Elapsed is how long the search took.
	Elapsed time.Duration `json:"-"`

	// ElapsedMS is Elapsed in milliseconds.
	ElapsedMS int64 `json:"elapsed_ms"`

	// Servers is the number of servers that were queried.
	Servers int `json:"servers"`

	// Total is the number of grouped entries; an item listed under two
	// categories counts twice.
	Total int `json:"total"`

	// Grouped holds the items by category.
	Grouped *model.GroupedResults `json:"results"`
}

// NewResults wraps grouped results for rendering.
func NewResults(query string, searchedAt time.Time, elapsed time.Duration, servers int, grouped *model.GroupedResults) *Results {
	if grouped == nil {
		grouped = model.NewGroupedResults()
	}
	return &Results{
		Query:      query,
		SearchedAt: searchedAt,
		Elapsed:    elapsed,
		ElapsedMS:  elapsed.Milliseconds(),
		Servers:    servers,
		Total:      grouped.Total(),
		Grouped:    grouped,
	}
}

// Writer defines the interface for report output.
type Writer interface {
	// WriteResults outputs search results.
	// Returns the number of bytes written and any error encountered.
	WriteResults(results *Results) (int, error)

	// WriteServers outputs the result of probing the registry.
	WriteServers(statuses []model.ServerStatus) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteResults outputs the results to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteResults(results *Results) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteResults(results)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteServers outputs the statuses to all configured Writers.
func (m *MultiWriter) WriteServers(statuses []model.ServerStatus) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteServers(statuses)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// statusText describes a probe result in a few words.
func statusText(s model.ServerStatus) string {
	switch {
	case !s.Reachable:
		return "unreachable"
	case s.StatusCode < 200 || s.StatusCode >= 300:
		return "HTTP " + strconv.Itoa(s.StatusCode)
	case !s.H5AI:
		return "online (not h5ai)"
	default:
		return "online"
	}
}
