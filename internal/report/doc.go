// Package report renders search results and server probe statuses.
//
// Three renderers share the Writer interface: SimpleWriter prints the
// terminal view with one section per category, JSONWriter produces the
// machine-readable document used by scripts, and MarkdownWriter writes
// tables (plus a pie chart of files per category) for sharing a search.
// MultiWriter fans one call out to several of them.
package report
