package model

import (
	"maps"
	"slices"
	"strings"
)

// Server describes one backend content server.
// A Server is built once by the registry and treated as read-only afterwards;
// accessors that expose slices or maps return copies.
type Server struct {
	// Name is the server identity. It is also the h5ai mount point, so the
	// search target path for the server is "/{Name}/".
	Name string `json:"name" yaml:"name"`

	// URL is the absolute base URL of the server, always ending in "/".
	URL string `json:"url" yaml:"url"`

	// Categories are the kinds of content hosted on the server, e.g. "Movies".
	Categories []string `json:"categories" yaml:"categories"`

	// Headers are extra HTTP headers sent with every request to this server.
	Headers map[string]string `json:"-" yaml:"headers,omitempty"`
}

// MountPath returns the h5ai path of the server root ("/{Name}/").
func (s Server) MountPath() string {
	return "/" + s.Name + "/"
}

// TrimmedURL returns the base URL without its trailing slash.
func (s Server) TrimmedURL() string {
	return strings.TrimRight(s.URL, "/")
}

// CategoriesCopy returns a copy of the server categories.
// Every ResultItem owns its own copy so that nothing downstream can mutate
// the registry through an item.
func (s Server) CategoriesCopy() []string {
	return slices.Clone(s.Categories)
}

// Clone returns a deep copy of the server.
func (s Server) Clone() Server {
	s.Categories = slices.Clone(s.Categories)
	s.Headers = maps.Clone(s.Headers)
	return s
}
