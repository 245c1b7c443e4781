package registry

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nao1215/flixsearch/internal/model"
)

// Registry is the immutable, ordered set of backend servers.
type Registry struct {
	servers []model.Server
	index   map[string]int
}

// New validates entries and builds a Registry.
// Server URLs are normalized to end with "/" and categories are trimmed.
// The order of entries is preserved; it is the order of search results.
func New(entries []Entry) (*Registry, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyRegistry
	}

	r := &Registry{
		servers: make([]model.Server, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for i, e := range entries {
		server, err := newServer(e)
		if err != nil {
			if e.Name == "" {
				return nil, fmt.Errorf("server #%d: %w", i+1, err)
			}
			return nil, fmt.Errorf("server %q: %w", e.Name, err)
		}
		if _, exists := r.index[server.Name]; exists {
			return nil, fmt.Errorf("server %q: %w", server.Name, ErrDuplicateName)
		}
		r.index[server.Name] = len(r.servers)
		r.servers = append(r.servers, server)
	}

	return r, nil
}

// newServer validates and normalizes one entry.
func newServer(e Entry) (model.Server, error) {
	name := strings.TrimSpace(e.Name)
	if name == "" {
		return model.Server{}, ErrMissingName
	}

	base, err := NormalizeURL(e.URL)
	if err != nil {
		return model.Server{}, err
	}

	categories := make([]string, 0, len(e.Categories))
	for _, c := range e.Categories {
		if c = strings.TrimSpace(c); c != "" {
			categories = append(categories, c)
		}
	}
	if len(categories) == 0 {
		return model.Server{}, ErrNoCategories
	}

	server := model.Server{
		Name:       name,
		URL:        base,
		Categories: categories,
	}
	if len(e.Headers) > 0 {
		server.Headers = make(map[string]string, len(e.Headers))
		for k, v := range e.Headers {
			server.Headers[k] = v
		}
	}
	return server, nil
}

// NormalizeURL checks that raw is an absolute http(s) URL and makes sure it
// ends with exactly one "/". Result links are built by appending paths to the
// base URL, so a query or fragment is rejected.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", ErrInvalidURL
	}
	if u.RawQuery != "" || u.ForceQuery || u.Fragment != "" || strings.Contains(raw, "#") {
		return "", fmt.Errorf("%w: query and fragment are not allowed", ErrInvalidURL)
	}
	return strings.TrimRight(raw, "/") + "/", nil
}

// Servers returns a copy of the servers in registry order.
func (r *Registry) Servers() []model.Server {
	out := make([]model.Server, len(r.servers))
	for i, s := range r.servers {
		out[i] = s.Clone()
	}
	return out
}

// Lookup returns the server with the given name.
func (r *Registry) Lookup(name string) (model.Server, bool) {
	i, ok := r.index[name]
	if !ok {
		return model.Server{}, false
	}
	return r.servers[i].Clone(), true
}

// Select returns a registry holding only the named servers, in registry
// order. Every name must exist.
func (r *Registry) Select(names ...string) (*Registry, error) {
	want := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if _, ok := r.Lookup(name); !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownServer, name)
		}
		want[name] = true
	}
	if len(want) == 0 {
		return nil, ErrEmptyRegistry
	}

	sub := &Registry{
		servers: make([]model.Server, 0, len(want)),
		index:   make(map[string]int, len(want)),
	}
	for _, s := range r.servers {
		if want[s.Name] {
			sub.index[s.Name] = len(sub.servers)
			sub.servers = append(sub.servers, s.Clone())
		}
	}
	return sub, nil
}

// Len returns the number of servers.
func (r *Registry) Len() int {
	return len(r.servers)
}

// Categories returns every category in first-seen registry order.
func (r *Registry) Categories() []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, s := range r.servers {
		for _, c := range s.Categories {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}
