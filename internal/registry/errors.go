package registry

import "errors"

// Registry validation errors. They are wrapped with the offending server
// name or index, so use errors.Is to test for them.
var (
	// ErrEmptyRegistry is returned when no server is configured.
	ErrEmptyRegistry = errors.New("registry has no servers")

	// ErrMissingName is returned when a server has no name.
	ErrMissingName = errors.New("server name is required")

	// ErrDuplicateName is returned when two servers share a name.
	ErrDuplicateName = errors.New("duplicate server name")

	// ErrInvalidURL is returned when a server URL is not an absolute http(s) URL.
	ErrInvalidURL = errors.New("server url must be an absolute http or https URL")

	// ErrNoCategories is returned when a server has no non-blank category.
	ErrNoCategories = errors.New("server needs at least one category")

	// ErrUnknownServer is returned by Select for a name that is not registered.
	ErrUnknownServer = errors.New("unknown server")
)
