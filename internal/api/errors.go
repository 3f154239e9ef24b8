package api

import (
	"errors"
	"fmt"
)

var (
	// ErrUnavailable is returned when the API could not be reached or
	// answered with a server-side failure. Callers may retry.
	ErrUnavailable = errors.New("api unavailable")

	// ErrRequest is returned when the API rejected the request itself
	// (bad input, missing permission, unknown id). Retrying will not help.
	ErrRequest = errors.New("api rejected request")

	// ErrNoDefault is returned by Default when no factory was registered.
	ErrNoDefault = errors.New("no default api client configured")
)

// StatusError carries the HTTP status and server message of a failed call.
type StatusError struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return e.Status
	}
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}
