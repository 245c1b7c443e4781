package model

import "time"

// ServerStatus is the result of probing a server.
type ServerStatus struct {
	// Server is the server name.
	Server string `json:"server"`

	// URL is the probed base URL.
	URL string `json:"url"`

	// Reachable is true when the server answered at all.
	Reachable bool `json:"reachable"`

	// StatusCode is the HTTP status code, 0 when unreachable.
	StatusCode int `json:"status_code,omitempty"`

	// Title is the HTML page title of the index page.
	Title string `json:"title,omitempty"`

	// H5AI is true when the index page looks like an h5ai listing.
	H5AI bool `json:"h5ai"`

	// Latency is how long the probe took.
	Latency time.Duration `json:"-"`

	// LatencyMS is Latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// Error describes why the probe failed.
	Error string `json:"error,omitempty"`
}

// Healthy reports whether the server is reachable, answered 2xx and serves h5ai.
func (s ServerStatus) Healthy() bool {
	return s.Reachable && s.StatusCode >= 200 && s.StatusCode < 300 && s.H5AI
}
