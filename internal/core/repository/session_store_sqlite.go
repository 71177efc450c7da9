package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/talalink/webapp/internal/core/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	sid        TEXT PRIMARY KEY,
	token      TEXT NOT NULL,
	user_json  TEXT,
	created_at TIMESTAMP NOT NULL
);
`

// SQLiteSessionStore implements domain.SessionStore on a local SQLite file.
// The file plays the role the browser's localStorage played for the token and
// user keys: sessions survive process restarts.
type SQLiteSessionStore struct {
	db *sql.DB
}

// OpenSessionStore opens (creating if needed) the session database at path.
// Use ":memory:" for an ephemeral store in tests.
func OpenSessionStore(path string) (*SQLiteSessionStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session store %q: %w", path, err)
	}
	// SQLite serializes writers anyway, and a single connection keeps
	// ":memory:" databases from fragmenting across the pool.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init session store schema: %w", err)
	}
	return &SQLiteSessionStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteSessionStore) Close() error {
	return s.db.Close()
}

// Get returns the session for the given browser session id.
// Returns (nil, nil) when no session is stored.
func (s *SQLiteSessionStore) Get(ctx context.Context, sid string) (*domain.Session, error) {
	query := `SELECT token, user_json, created_at FROM sessions WHERE sid = ?`

	var (
		token     string
		userJSON  sql.NullString
		createdAt time.Time
	)
	err := s.db.QueryRowContext(ctx, query, sid).Scan(&token, &userJSON, &createdAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query session: %w", err)
	}

	sess := &domain.Session{Token: token, CreatedAt: createdAt}
	if userJSON.Valid && userJSON.String != "" {
		var u domain.User
		if err := json.Unmarshal([]byte(userJSON.String), &u); err != nil {
			return nil, fmt.Errorf("decode stored user: %w", err)
		}
		sess.User = &u
	}
	return sess, nil
}

// Put stores (or replaces) the session for the given browser session id.
func (s *SQLiteSessionStore) Put(ctx context.Context, sid string, sess *domain.Session) error {
	var userJSON []byte
	if sess.User != nil {
		var err error
		userJSON, err = json.Marshal(sess.User)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
	}

	createdAt := sess.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	query := `
		INSERT INTO sessions (sid, token, user_json, created_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(sid) DO UPDATE SET token = excluded.token,
			user_json = excluded.user_json, created_at = excluded.created_at
	`
	if _, err := s.db.ExecContext(ctx, query, sid, sess.Token, string(userJSON), createdAt); err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	return nil
}

// Delete removes the session for the given browser session id.
func (s *SQLiteSessionStore) Delete(ctx context.Context, sid string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE sid = ?`, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
