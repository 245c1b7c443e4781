package config

import (
	"net"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/nao1215/flixsearch/internal/registry"
	"github.com/nao1215/flixsearch/internal/transport"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "flixsearch"

	// DefaultTimeout bounds a single backend search request.
	DefaultTimeout = transport.DefaultTimeout

	// DefaultListenAddress is where `flixsearch serve` listens.
	DefaultListenAddress = ":5000"

	// DefaultMaxBodySize caps a backend search response. Searches for very
	// common words on large mirrors return a few MB of JSON.
	DefaultMaxBodySize = 10 * 1024 * 1024

	// DefaultUserAgent is sent with every backend request.
	DefaultUserAgent = transport.DefaultUserAgent

	// DeadlineGrace is added to Timeout when no Deadline is configured.
	DeadlineGrace = 5 * time.Second
)

// Config holds all configuration options for flixsearch.
// It is built by the command layer and passed down explicitly.
type Config struct {
	// Timeout is the per-server request timeout.
	Timeout time.Duration

	// Deadline bounds a whole search. Zero derives it from Timeout.
	Deadline time.Duration

	// Concurrency caps the number of servers queried at once.
	// Zero means one worker per server.
	Concurrency int

	// ListenAddress is the address of the web server.
	ListenAddress string

	// ProxyAddress is an optional SOCKS5 proxy for backend requests.
	ProxyAddress string

	// UserAgent is sent with every backend request.
	UserAgent string

	// MaxBodySize is the maximum backend response size in bytes.
	MaxBodySize int64

	// RequestsPerSecond limits outbound backend requests. Zero disables the limit.
	RequestsPerSecond float64

	// Verbose enables debug logging.
	Verbose bool

	// JSONLog switches log output to JSON.
	JSONLog bool

	// JSONReport and MarkdownReport select the output format of `search`.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file of `search`. Empty means stdout.
	ReportFile string

	// ConfigFilePath is the configuration file that was loaded, if any.
	ConfigFilePath string

	// Servers are the registry entries from the configuration file.
	// Nil means the built-in server list.
	Servers []registry.Entry

	// ServerNames restricts searches to these servers. Empty means all.
	ServerNames []string
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:       DefaultTimeout,
		ListenAddress: DefaultListenAddress,
		UserAgent:     DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
	}
}

// XDGConfigDir returns the XDG config directory for flixsearch.
// On Linux: ~/.config/flixsearch
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Deadline < 0 {
		return ErrInvalidDeadline
	}
	if c.Concurrency < 0 {
		return ErrInvalidConcurrency
	}
	if c.MaxBodySize <= 0 {
		return ErrInvalidMaxBodySize
	}
	if c.RequestsPerSecond < 0 {
		return ErrInvalidRateLimit
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if _, _, err := net.SplitHostPort(c.ListenAddress); err != nil {
		return ErrInvalidListenAddress
	}
	return nil
}

// EffectiveDeadline returns the overall search deadline.
// Servers are queried in parallel, so one timeout plus a grace period
// covers the slowest server.
func (c *Config) EffectiveDeadline() time.Duration {
	if c.Deadline > 0 {
		return c.Deadline
	}
	return c.Timeout + DeadlineGrace
}

// Registry builds the server registry from the configured servers, falling
// back to the built-in list, and narrows it to ServerNames when set.
func (c *Config) Registry() (*registry.Registry, error) {
	reg := registry.Default()
	if len(c.Servers) > 0 {
		var err error
		if reg, err = registry.New(c.Servers); err != nil {
			return nil, err
		}
	}
	if len(c.ServerNames) == 0 {
		return reg, nil
	}
	return reg.Select(c.ServerNames...)
}
