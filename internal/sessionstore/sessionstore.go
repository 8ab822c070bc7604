// Package sessionstore is Aurora's embedded relational store for
// conversation sessions, their messages, and cross-session episodic
// memory. It uses a pure-Go sqlite driver so the server needs no cgo
// toolchain, and serializes every operation behind a single connection
// plus an explicit mutex — simplicity over throughput, matching the
// single-user deployment model.
package sessionstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"aurora/pkg/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id            TEXT PRIMARY KEY,
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL,
	model         TEXT,
	title         TEXT,
	message_count INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS messages (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
	role       TEXT NOT NULL,
	content    TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	metadata   TEXT
);
CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id, id);

CREATE TABLE IF NOT EXISTS episodic_memory (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	event_type TEXT NOT NULL,
	summary    TEXT NOT NULL,
	session_id TEXT,
	created_at TIMESTAMP NOT NULL,
	metadata   TEXT
);
CREATE INDEX IF NOT EXISTS idx_episodic_memory_created_at ON episodic_memory(created_at);
`

// Store is the session/message/memory database. All operations run
// through a single connection serialized behind mu.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (and if needed creates) the sqlite database at path and
// runs schema migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSession inserts a new session row and returns it.
func (s *Store) CreateSession(ctx context.Context, model, title string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	sess := models.Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		UpdatedAt: now,
		Model:     model,
		Title:     title,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, updated_at, model, title, message_count) VALUES (?, ?, ?, ?, ?, 0)`,
		sess.ID, sess.CreatedAt, sess.UpdatedAt, sess.Model, sess.Title,
	)
	if err != nil {
		return models.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// GetSession returns the session row for id.
func (s *Store) GetSession(ctx context.Context, id string) (models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getSessionLocked(ctx, id)
}

func (s *Store) getSessionLocked(ctx context.Context, id string) (models.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, updated_at, model, title, message_count FROM sessions WHERE id = ?`, id)

	var sess models.Session
	var model, title sql.NullString
	if err := row.Scan(&sess.ID, &sess.CreatedAt, &sess.UpdatedAt, &model, &title, &sess.MessageCount); err != nil {
		return models.Session{}, err
	}
	sess.Model = model.String
	sess.Title = title.String
	return sess, nil
}

// ListSessions returns every session, most recently updated first.
func (s *Store) ListSessions(ctx context.Context) ([]models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, updated_at, model, title, message_count FROM sessions ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		var sess models.Session
		var model, title sql.NullString
		if err := rows.Scan(&sess.ID, &sess.CreatedAt, &sess.UpdatedAt, &model, &title, &sess.MessageCount); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.Model = model.String
		sess.Title = title.String
		out = append(out, sess)
	}
	return out, rows.Err()
}

// AddMessage appends a message to session id and atomically bumps its
// message_count and updated_at in the same lock scope.
func (s *Store) AddMessage(ctx context.Context, sessionID, role, content string) (models.SessionMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (session_id, role, content, created_at) VALUES (?, ?, ?, ?)`,
		sessionID, role, content, now,
	)
	if err != nil {
		return models.SessionMessage{}, fmt.Errorf("insert message: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.SessionMessage{}, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET message_count = message_count + 1, updated_at = ? WHERE id = ?`,
		now, sessionID,
	); err != nil {
		return models.SessionMessage{}, fmt.Errorf("update session counters: %w", err)
	}

	return models.SessionMessage{
		ID:        id,
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: now,
	}, nil
}

// GetMessages returns every message for sessionID, oldest first.
func (s *Store) GetMessages(ctx context.Context, sessionID string) ([]models.SessionMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryMessagesLocked(ctx, sessionID, 0)
}

// GetRecentMessages returns the most recent n messages for sessionID, in
// chronological order (the query fetches them DESC for index locality,
// then reverses before returning).
func (s *Store) GetRecentMessages(ctx context.Context, sessionID string, n int) ([]models.SessionMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryMessagesLocked(ctx, sessionID, n)
}

func (s *Store) queryMessagesLocked(ctx context.Context, sessionID string, limit int) ([]models.SessionMessage, error) {
	query := `SELECT id, session_id, role, content, created_at, metadata FROM messages WHERE session_id = ? ORDER BY id DESC`
	args := []any{sessionID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []models.SessionMessage
	for rows.Next() {
		var m models.SessionMessage
		var metadata sql.NullString
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Content, &m.CreatedAt, &metadata); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Metadata = metadata.String
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// DeleteSession removes a session and its messages.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// ClearAllSessions deletes every session and message.
func (s *Store) ClearAllSessions(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, `DELETE FROM messages`); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions`); err != nil {
		return fmt.Errorf("clear sessions: %w", err)
	}
	return nil
}

// RecordMemory appends an episodic memory entry.
func (s *Store) RecordMemory(ctx context.Context, eventType, summary, sessionID string) (models.EpisodicMemory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO episodic_memory (event_type, summary, session_id, created_at) VALUES (?, ?, ?, ?)`,
		eventType, summary, sessionID, now,
	)
	if err != nil {
		return models.EpisodicMemory{}, fmt.Errorf("insert memory: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.EpisodicMemory{}, fmt.Errorf("last insert id: %w", err)
	}
	return models.EpisodicMemory{
		ID:        id,
		EventType: eventType,
		Summary:   summary,
		SessionID: sessionID,
		CreatedAt: now,
	}, nil
}

// GetRecentMemories returns the n most recent episodic memory entries
// across all sessions, most recent first.
func (s *Store) GetRecentMemories(ctx context.Context, n int) ([]models.EpisodicMemory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_type, summary, session_id, created_at, metadata FROM episodic_memory ORDER BY created_at DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query memories: %w", err)
	}
	defer rows.Close()

	var out []models.EpisodicMemory
	for rows.Next() {
		var m models.EpisodicMemory
		var sessionID, metadata sql.NullString
		if err := rows.Scan(&m.ID, &m.EventType, &m.Summary, &sessionID, &m.CreatedAt, &metadata); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		m.SessionID = sessionID.String
		m.Metadata = metadata.String
		out = append(out, m)
	}
	return out, rows.Err()
}

// ClearMemories deletes every episodic memory entry.
func (s *Store) ClearMemories(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM episodic_memory`)
	return err
}

// GetSessionContext returns the session row plus its most recent
// maxMsgs messages and maxMem global memories — the snapshot served by
// GET /api/sessions/:id.
func (s *Store) GetSessionContext(ctx context.Context, id string, maxMsgs, maxMem int) (models.SessionContext, error) {
	s.mu.Lock()
	sess, err := s.getSessionLocked(ctx, id)
	s.mu.Unlock()
	if err != nil {
		return models.SessionContext{}, err
	}

	messages, err := s.GetRecentMessages(ctx, id, maxMsgs)
	if err != nil {
		return models.SessionContext{}, err
	}
	memories, err := s.GetRecentMemories(ctx, maxMem)
	if err != nil {
		return models.SessionContext{}, err
	}

	return models.SessionContext{
		Session:  sess,
		Messages: messages,
		Memories: memories,
	}, nil
}

// UpdateSessionModel changes the model associated with a session.
func (s *Store) UpdateSessionModel(ctx context.Context, id, model string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET model = ?, updated_at = ? WHERE id = ?`, model, time.Now().UTC(), id)
	return err
}

// UpdateSessionTitle sets a session's title (used for auto-titling on
// the first message).
func (s *Store) UpdateSessionTitle(ctx context.Context, id, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `UPDATE sessions SET title = ? WHERE id = ?`, title, id)
	return err
}
