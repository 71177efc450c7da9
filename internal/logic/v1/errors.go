// Package v1 holds the client-side business rules of the Talalink web app:
// session lifecycle, listing browse/create/update/delete, and the maintenance
// and chat views.
//
// Error handling follows one convention: sentinel errors defined here are
// wrapped with fmt.Errorf("%w") where they occur, and the web layer dispatches
// on them with errors.Is. Backend transport and response failures keep their
// own sentinels in the backend package.
package v1

import "errors"

// Sentinel errors for form preconditions and guarded operations.
var (
	// ErrPasswordTooShort indicates the signup password failed the local
	// minimum-length precondition. No network call is made.
	ErrPasswordTooShort = errors.New("password too short")

	// ErrInvalidDraft indicates the listing draft failed a local
	// precondition (empty title, non-positive price, unknown category).
	ErrInvalidDraft = errors.New("invalid listing draft")

	// ErrNotConfirmed indicates a delete was requested without the explicit
	// confirmation gesture. No network call is made.
	ErrNotConfirmed = errors.New("delete not confirmed")

	// ErrNoSession indicates an authenticated operation was attempted with
	// no session in the store.
	ErrNoSession = errors.New("no active session")

	// ErrUnknownTask indicates a maintenance task id that does not exist.
	ErrUnknownTask = errors.New("unknown repair task")

	// ErrUnknownThread indicates a chat thread id that does not exist.
	ErrUnknownThread = errors.New("unknown chat thread")
)

// MinPasswordLen is the local signup precondition checked before any
// network call.
const MinPasswordLen = 8
