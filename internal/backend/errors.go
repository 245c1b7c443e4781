package backend

import "errors"

var (
	// ErrUnexpectedStatus is returned when a server answers with a non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected HTTP status")

	// ErrMalformedResponse is returned when the response body is not valid JSON.
	ErrMalformedResponse = errors.New("malformed search response")

	// ErrMissingSearchKey is returned when the response has no "search" array.
	ErrMissingSearchKey = errors.New("search response has no search array")

	// ErrResponseTooLarge is returned when the body exceeds the configured limit.
	ErrResponseTooLarge = errors.New("search response too large")

	// ErrPanic wraps a panic recovered while querying a server.
	ErrPanic = errors.New("panic while querying server")
)
