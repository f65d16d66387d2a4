// Package session provides the SQLite-backed conversation log.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pepperumo/peppegpt/internal/models"
)

// Turn is one persisted message within a session. Assistant turns carry the
// response type and confidence of the answer they delivered.
type Turn struct {
	ID           string  `json:"id"`
	SessionID    string  `json:"session_id"`
	Role         string  `json:"role"`
	Content      string  `json:"content"`
	ResponseType string  `json:"response_type,omitempty"`
	Confidence   float64 `json:"confidence,omitempty"`
	CreatedAt    time.Time
}

// Stats summarizes the log for status reporting.
type Stats struct {
	Sessions int `json:"sessions"`
	Turns    int `json:"turns"`
}

// Store logs chat exchanges to SQLite. Safe for concurrent use; database/sql
// serializes access to the sqlite connection.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at dbPath and initializes the
// schema. Parent directories are created if they do not exist.
func NewStore(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL: %w", err)
	}

	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS turns (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		response_type TEXT,
		confidence REAL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_turns_session_id ON turns(session_id);
	CREATE INDEX IF NOT EXISTS idx_turns_session_created ON turns(session_id, created_at);
	`
	_, err := db.Exec(schema)
	return err
}

// RecordExchange logs one question/answer pair under sessionID, creating the
// session row on first use. Implements the orchestrator's Recorder.
func (s *Store) RecordExchange(ctx context.Context, sessionID, question string, answer models.Answer) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO sessions (id, created_at) VALUES (?, ?)`,
		sessionID, now,
	); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO turns (id, session_id, role, content, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), sessionID, models.RoleUser, question, now,
	); err != nil {
		return fmt.Errorf("failed to insert user turn: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO turns (id, session_id, role, content, response_type, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), sessionID, models.RoleAssistant, answer.Text, string(answer.Type), answer.Confidence, now,
	); err != nil {
		return fmt.Errorf("failed to insert assistant turn: %w", err)
	}

	return tx.Commit()
}

// History returns the turns of a session in insertion order.
func (s *Store) History(ctx context.Context, sessionID string) ([]Turn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, role, content, COALESCE(response_type, ''), COALESCE(confidence, 0), created_at
		 FROM turns WHERE session_id = ? ORDER BY created_at, rowid`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &t.ResponseType, &t.Confidence, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// Stats counts sessions and turns.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions`).Scan(&st.Sessions); err != nil {
		return Stats{}, fmt.Errorf("failed to count sessions: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM turns`).Scan(&st.Turns); err != nil {
		return Stats{}, fmt.Errorf("failed to count turns: %w", err)
	}
	return st, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
