package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/talalink/webapp/internal/core/domain"
)

// SessionCookie is the browser cookie holding the opaque session id.
const SessionCookie = "tl_sid"

const sessionContextKey = "session"

// SessionReader is the slice of the session service the guard needs.
// Defined here to avoid an import cycle with the logic layer.
type SessionReader interface {
	// Current returns the live session for a browser session id, or
	// (nil, nil) when the visitor is not logged in.
	Current(ctx context.Context, sid string) (*domain.Session, error)
}

// AttachSession resolves the visitor's session (when present) and stores it
// in the gin context for handlers and templates. It never blocks a request:
// public routes render with or without a session.
func AttachSession(sessions SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid, err := c.Cookie(SessionCookie)
		if err != nil || sid == "" {
			c.Next()
			return
		}

		sess, err := sessions.Current(c.Request.Context(), sid)
		if err != nil {
			// A broken store must not take down public pages.
			log.Ctx(c.Request.Context()).Error().Err(err).Msg("session lookup failed")
			c.Next()
			return
		}
		if sess != nil {
			c.Set(sessionContextKey, sess)
		}
		c.Next()
	}
}

// RequireSession gates protected routes: without a session the request is
// redirected to the login page. No return-to target is preserved.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentSession(c) == nil {
			c.Redirect(http.StatusSeeOther, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentSession returns the session attached to the request, or nil.
func CurrentSession(c *gin.Context) *domain.Session {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return nil
	}
	sess, ok := v.(*domain.Session)
	if !ok {
		return nil
	}
	return sess
}
