package domain

import (
	"context"
	"time"
)

// User is the account identity returned by the marketplace backend.
type User struct {
	ID        int    `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	IsArtisan bool   `json:"is_artisan"`
}

// Session is the authenticated state held for one browser: the bearer token
// issued by the backend plus the user it belongs to. User != nil implies
// Token != "".
type Session struct {
	Token     string
	User      *User
	CreatedAt time.Time
}

// SessionStore is the durable storage contract for browser sessions.
// Implementations live in internal/core/repository (Core layer).
// The Logic layer depends on this interface only — never on SQL directly.
type SessionStore interface {
	// Get returns the session for the given browser session id.
	// Returns (nil, nil) when no session is stored.
	Get(ctx context.Context, sid string) (*Session, error)

	// Put stores (or replaces) the session for the given browser session id.
	Put(ctx context.Context, sid string, sess *Session) error

	// Delete removes the session for the given browser session id.
	// Deleting an absent session is not an error.
	Delete(ctx context.Context, sid string) error
}
