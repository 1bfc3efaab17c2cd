package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one flow transition recorded locally. The journal is the
// gateway's own audit record of what each visitor session did; it never
// mirrors backend data beyond the booking id/code it was given.
type Entry struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId"`
	BookingID string    `json:"bookingId,omitempty"`
	Code      string    `json:"code,omitempty"`
	Event     string    `json:"event"`
	Detail    string    `json:"detail,omitempty"`
	At        time.Time `json:"at"`
}

type Journal struct {
	db *sql.DB
}

// Open creates the journal database and its schema if needed.
func Open(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to journal database: %w", err)
	}

	query := `CREATE TABLE IF NOT EXISTS flow_journal (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        session_id TEXT NOT NULL,
        booking_id TEXT,
        code TEXT,
        event TEXT NOT NULL,
        detail TEXT,
        at DATETIME NOT NULL
    )`
	if _, err := db.Exec(query); err != nil {
		return nil, fmt.Errorf("failed to create journal table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_flow_journal_session ON flow_journal(session_id)`); err != nil {
		return nil, fmt.Errorf("failed to create journal index: %w", err)
	}

	return &Journal{db: db}, nil
}

func (j *Journal) Record(ctx context.Context, e Entry) error {
	if j == nil {
		return nil
	}
	if e.At.IsZero() {
		e.At = time.Now()
	}
	_, err := j.db.ExecContext(ctx,
		`INSERT INTO flow_journal (session_id, booking_id, code, event, detail, at) VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.BookingID, e.Code, e.Event, e.Detail, e.At)
	if err != nil {
		return fmt.Errorf("failed to record journal entry: %w", err)
	}
	return nil
}

// List returns the most recent entries, optionally filtered by session.
func (j *Journal) List(ctx context.Context, sessionID string, limit int) ([]Entry, error) {
	if j == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT id, session_id, COALESCE(booking_id, ''), COALESCE(code, ''), event, COALESCE(detail, ''), at
        FROM flow_journal`
	args := []any{}
	if sessionID != "" {
		query += ` WHERE session_id = ?`
		args = append(args, sessionID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query journal: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.BookingID, &e.Code, &e.Event, &e.Detail, &e.At); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}
