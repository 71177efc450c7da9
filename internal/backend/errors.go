// Package backend is the typed HTTP client for the external Talalink
// marketplace API. Every call maps its failure into one of three buckets:
// transport failure (ErrConnectivity), a non-2xx response with a structured
// error payload (*ServerError), or a body that could not be decoded
// (ErrBadResponse). Nothing is retried here.
package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for backend calls. Wrap with fmt.Errorf("%w") and check
// with errors.Is at the handler boundary.
var (
	// ErrConnectivity indicates the request never reached the backend.
	ErrConnectivity = errors.New("backend unreachable")

	// ErrUnauthorized indicates a 401: the bearer token is absent, invalid
	// or expired. Handlers clear the session and redirect to login.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates a 404 on a direct-id fetch.
	ErrNotFound = errors.New("not found")

	// ErrBadResponse indicates the backend answered with a body that could
	// not be decoded.
	ErrBadResponse = errors.New("malformed backend response")
)

// ServerError is a non-2xx response carrying the backend's structured error
// message. The message is surfaced to the user verbatim.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses onto sentinel errors so callers can use
// errors.Is without inspecting the status themselves.
func (e *ServerError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}
