package v1

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/talalink/webapp/internal/backend"
	"github.com/talalink/webapp/internal/core/domain"
	"github.com/talalink/webapp/middleware"
)

// AuthAPI is the slice of the backend client the session service uses.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*backend.AuthResponse, error)
	Register(ctx context.Context, username, email, password string, isArtisan bool) error
	Verify(ctx context.Context, token string) error
}

// SessionService owns the session lifecycle. The durable store is the single
// source of truth for "logged in": token presence there decides
// authentication, never in-memory state, so a restart of either side cannot
// drift the two apart.
type SessionService struct {
	store domain.SessionStore
	api   AuthAPI
}

// NewSessionService creates a SessionService with the given store and
// backend client.
func NewSessionService(store domain.SessionStore, api AuthAPI) *SessionService {
	return &SessionService{store: store, api: api}
}

// Login exchanges credentials with the backend and persists the resulting
// token and user under the browser session id. The backend's error message
// is propagated untouched for verbatim display.
func (s *SessionService) Login(ctx context.Context, sid, email, password string) (*domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "session.login", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("auth.success", false))
		return nil, fmt.Errorf("login: %w", err)
	}

	sess := &domain.Session{
		Token:     resp.Token,
		User:      &resp.User,
		CreatedAt: time.Now(),
	}
	if err := s.store.Put(ctx, sid, sess); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("persist session: %w", err)
	}

	span.SetAttributes(
		attribute.Int("user.id", resp.User.ID),
		attribute.Bool("auth.success", true),
	)
	return sess, nil
}

// Signup registers a new account. The minimum-password-length precondition
// is checked locally before any network call.
func (s *SessionService) Signup(ctx context.Context, username, email, password string) error {
	ctx, span := middleware.StartSpan(ctx, "session.signup", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	if len(password) < MinPasswordLen {
		span.SetAttributes(attribute.Bool("precondition.ok", false))
		return fmt.Errorf("password must be at least %d characters: %w", MinPasswordLen, ErrPasswordTooShort)
	}

	if err := s.api.Register(ctx, username, email, password, true); err != nil {
		span.RecordError(err)
		return fmt.Errorf("signup: %w", err)
	}
	return nil
}

// VerifyEmail confirms an email verification token with the backend.
func (s *SessionService) VerifyEmail(ctx context.Context, token string) error {
	ctx, span := middleware.StartSpan(ctx, "session.verify_email")
	defer span.End()

	if err := s.api.Verify(ctx, token); err != nil {
		span.RecordError(err)
		return fmt.Errorf("verify email: %w", err)
	}
	return nil
}

// Logout clears the stored session. It always succeeds locally and performs
// no backend call.
func (s *SessionService) Logout(ctx context.Context, sid string) error {
	ctx, span := middleware.StartSpan(ctx, "session.logout")
	defer span.End()

	if err := s.store.Delete(ctx, sid); err != nil {
		span.RecordError(err)
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns the live session for the browser session id, or (nil, nil)
// when there is none. A token whose exp claim has passed counts as absent and
// is cleared from the store.
func (s *SessionService) Current(ctx context.Context, sid string) (*domain.Session, error) {
	if sid == "" {
		return nil, nil
	}

	sess, err := s.store.Get(ctx, sid)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil || sess.Token == "" {
		return nil, nil
	}

	if tokenExpired(sess.Token, time.Now()) {
		// Best effort: a failed cleanup still means "not logged in".
		_ = s.store.Delete(ctx, sid)
		return nil, nil
	}
	return sess, nil
}

// IsAuthenticated reports whether a usable token is present in durable
// storage for the browser session id.
func (s *SessionService) IsAuthenticated(ctx context.Context, sid string) (bool, error) {
	sess, err := s.Current(ctx, sid)
	if err != nil {
		return false, err
	}
	return sess != nil, nil
}

// tokenExpired reads the exp claim of a backend-issued JWT without verifying
// the signature (the backend is the verifier; the client only needs to know
// when to stop presenting the token). Opaque tokens never expire locally.
func tokenExpired(token string, now time.Time) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
