package model

import (
	"bytes"
	"encoding/json"
	"time"
)

// ResultItem is a single downloadable file found on a backend.
// Only files with an allowed extension are turned into ResultItems.
type ResultItem struct {
	// Name is the percent-decoded file name (last path segment).
	Name string `json:"name"`

	// URL is the absolute download URL.
	URL string `json:"url"`

	// Extension is the lowercase extension including the leading dot.
	Extension string `json:"ext"`

	// Icon is the display icon class for the extension.
	Icon string `json:"icon"`

	// Server is the name of the server that listed the file.
	Server string `json:"server"`

	// Categories is this item's own copy of the server categories.
	Categories []string `json:"categories"`
}

// Outcome is what one backend query produced.
// A failed query still yields an Outcome; Err is kept for diagnostics only
// and Items is empty in that case.
type Outcome struct {
	Server  string
	Items   []*ResultItem
	Err     error
	Elapsed time.Duration
}

// Failed reports whether the query failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Group is one category bucket of a GroupedResults.
type Group struct {
	Category string        `json:"category"`
	Items    []*ResultItem `json:"items"`
}

// GroupedResults maps categories to result items.
// Categories keep the order in which they were first seen and items keep
// insertion order within their bucket. The same *ResultItem may appear in
// several buckets when its server carries several categories.
type GroupedResults struct {
	order   []string
	buckets map[string][]*ResultItem
}

// NewGroupedResults returns an empty GroupedResults.
func NewGroupedResults() *GroupedResults {
	return &GroupedResults{
		order:   make([]string, 0),
		buckets: make(map[string][]*ResultItem),
	}
}

// Add appends item to the bucket of category, creating the bucket if needed.
func (g *GroupedResults) Add(category string, item *ResultItem) {
	if g.buckets == nil {
		g.buckets = make(map[string][]*ResultItem)
	}
	if _, ok := g.buckets[category]; !ok {
		g.order = append(g.order, category)
	}
	g.buckets[category] = append(g.buckets[category], item)
}

// Categories returns the category names in first-seen order.
func (g *GroupedResults) Categories() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Get returns the items of a category and whether the category exists.
func (g *GroupedResults) Get(category string) ([]*ResultItem, bool) {
	items, ok := g.buckets[category]
	return items, ok
}

// Groups returns the ordered list of category buckets.
func (g *GroupedResults) Groups() []Group {
	groups := make([]Group, 0, len(g.order))
	for _, category := range g.order {
		groups = append(groups, Group{Category: category, Items: g.buckets[category]})
	}
	return groups
}

// Len returns the number of categories.
func (g *GroupedResults) Len() int {
	return len(g.order)
}

// Total returns the number of entries over all buckets.
// An item listed under two categories counts twice.
func (g *GroupedResults) Total() int {
	total := 0
	for _, items := range g.buckets {
		total += len(items)
	}
	return total
}

// IsEmpty reports whether there are no results at all.
func (g *GroupedResults) IsEmpty() bool {
	return len(g.order) == 0
}

// MarshalJSON encodes the results as a JSON object whose keys keep the
// first-seen category order. URLs are written without HTML escaping.
func (g *GroupedResults) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	buf.WriteByte('{')
	for i, category := range g.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := enc.Encode(category); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := enc.Encode(g.buckets[category]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
