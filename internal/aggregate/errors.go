package aggregate

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery is returned when the query is empty or only whitespace.
var ErrEmptyQuery = errors.New("query must not be empty")

// QueryError reports a rejected query together with the value the caller sent.
type QueryError struct {
	Query string
	Err   error
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid query %q: %v", e.Query, e.Err)
}

// Unwrap returns the underlying sentinel error.
func (e *QueryError) Unwrap() error {
	return e.Err
}
