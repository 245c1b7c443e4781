package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrInvalidTimeout is returned when the per-server timeout is not positive.
	// An unbounded request would let one dead server stall every search.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidDeadline is returned when the overall search deadline is negative.
	ErrInvalidDeadline = errors.New("invalid deadline: must be non-negative")

	// ErrInvalidConcurrency is returned when the concurrency limit is negative.
	// Zero means one worker per server.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the max body size is not positive.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be positive")

	// ErrInvalidRateLimit is returned when requests per second is negative.
	ErrInvalidRateLimit = errors.New("invalid rate limit: must be non-negative")

	// ErrInvalidListenAddress is returned when the listen address is not host:port.
	ErrInvalidListenAddress = errors.New("invalid listen address: expected [host]:port")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrConfigNotFound is returned when the configuration file does not exist.
	ErrConfigNotFound = errors.New("configuration file not found")
)
