package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/talalink/webapp/internal/core/domain"
)

type stubSessions struct {
	sessions map[string]*domain.Session
	err      error
}

func (s *stubSessions) Current(ctx context.Context, sid string) (*domain.Session, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.sessions[sid], nil
}

func newGuardedEngine(reader SessionReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachSession(reader))
	r.GET("/public", func(c *gin.Context) {
		if CurrentSession(c) != nil {
			c.String(http.StatusOK, "hello %s", CurrentSession(c).User.Username)
			return
		}
		c.String(http.StatusOK, "hello guest")
	})
	protected := r.Group("/", RequireSession())
	protected.GET("/private", func(c *gin.Context) {
		c.String(http.StatusOK, "secret")
	})
	return r
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func withCookie(req *http.Request, sid string) *http.Request {
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: sid})
	return req
}

func TestAttachSessionResolvesCookie(t *testing.T) {
	reader := &stubSessions{sessions: map[string]*domain.Session{
		"sid-1": {Token: "tok", User: &domain.User{Username: "jane"}},
	}}
	r := newGuardedEngine(reader)

	w := serve(r, withCookie(httptest.NewRequest(http.MethodGet, "/public", nil), "sid-1"))
	if w.Body.String() != "hello jane" {
		t.Errorf("Expected resolved session, got %q", w.Body.String())
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/public", nil))
	if w.Body.String() != "hello guest" {
		t.Errorf("Expected guest rendering without a cookie, got %q", w.Body.String())
	}
}

func TestAttachSessionToleratesStoreFailure(t *testing.T) {
	r := newGuardedEngine(&stubSessions{err: errors.New("store down")})

	w := serve(r, withCookie(httptest.NewRequest(http.MethodGet, "/public", nil), "sid-1"))
	if w.Code != http.StatusOK || w.Body.String() != "hello guest" {
		t.Errorf("Public page must survive a broken store, got %d %q", w.Code, w.Body.String())
	}
}

func TestRequireSessionRedirects(t *testing.T) {
	reader := &stubSessions{sessions: map[string]*domain.Session{
		"sid-1": {Token: "tok", User: &domain.User{Username: "jane"}},
	}}
	r := newGuardedEngine(reader)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/private", nil))
	if w.Code != http.StatusSeeOther || w.Header().Get("Location") != "/login" {
		t.Errorf("Expected 303 to /login, got %d %q", w.Code, w.Header().Get("Location"))
	}

	w = serve(r, withCookie(httptest.NewRequest(http.MethodGet, "/private", nil), "sid-1"))
	if w.Code != http.StatusOK || w.Body.String() != "secret" {
		t.Errorf("Expected protected page for a live session, got %d %q", w.Code, w.Body.String())
	}
}
