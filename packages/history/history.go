// Package history keeps a local SQLite log of executed calls so past
// requests can be reviewed from the CLI.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// SQLite driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/restcall-dev/restcall/packages/rest"
)

// Entry is one recorded execution.
type Entry struct {
	RequestID string
	Method    string
	URL       string
	Status    int
	ElapsedMs int64
	Attempts  int
	CreatedAt time.Time
}

// Store is a call log backed by SQLite.
type Store struct {
	db           *sql.DB
	queryTimeout time.Duration
}

const schema = `
CREATE TABLE IF NOT EXISTS calls (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	request_id TEXT NOT NULL,
	method     TEXT NOT NULL,
	url        TEXT NOT NULL,
	status     INTEGER NOT NULL,
	elapsed_ms INTEGER NOT NULL,
	attempts   INTEGER NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_calls_created_at ON calls(created_at);
`

// Open opens (creating if needed) the call log at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to history database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate history database: %w", err)
	}

	return &Store{db: db, queryTimeout: 30 * time.Second}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record appends one executed request/response pair to the log.
func (s *Store) Record(req *rest.Request, resp *rest.Response) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	url := req.TargetString()
	if resp.ResponseURI != nil {
		url = resp.ResponseURI.String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calls (request_id, method, url, status, elapsed_ms, attempts) VALUES (?, ?, ?, ?, ?, ?)`,
		req.ID.String(), string(req.Method), url, resp.StatusCode, resp.DurationMs(), req.Attempts(),
	)
	if err != nil {
		return fmt.Errorf("failed to record call: %w", err)
	}
	return nil
}

// Recent returns the latest n entries, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT request_id, method, url, status, elapsed_ms, attempts, created_at
		 FROM calls ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.RequestID, &e.Method, &e.URL, &e.Status, &e.ElapsedMs, &e.Attempts, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return entries, nil
}
