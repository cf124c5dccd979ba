// Package history persists past questions and the SQL they produced, with
// database migrations.
package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // sqlite driver for the history database
)

//go:embed migrations/*.sql
var migrations embed.FS

// DefaultLimit caps how many entries the store keeps.
const DefaultLimit = 200

// Entry is one recorded question/SQL pair.
type Entry struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Question  string    `json:"question"`
	SQL       string    `json:"sql"`
	Dialect   string    `json:"dialect"`
	RowCount  int       `json:"row_count"`
	ElapsedMS int64     `json:"elapsed_ms"`
	Error     string    `json:"error,omitempty"`
}

// Store keeps query history in a SQLite database.
type Store struct {
	db    *sql.DB
	path  string
	limit int
}

// Open opens (or creates) the history database at path and runs pending
// migrations. Use ":memory:" for tests. limit <= 0 means DefaultLimit.
func Open(path string, limit int) (*Store, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping history database: %w", err)
	}

	s := &Store{db: db, path: path, limit: limit}
	if err := s.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Append records an entry and prunes anything beyond the store limit.
func (s *Store) Append(ctx context.Context, e Entry) (*Entry, error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO query_history (id, created_at, question, sql_text, dialect, row_count, elapsed_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.CreatedAt, e.Question, e.SQL, e.Dialect, e.RowCount, e.ElapsedMS, e.Error)
	if err != nil {
		return nil, fmt.Errorf("failed to append history entry: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		DELETE FROM query_history
		WHERE id NOT IN (
			SELECT id FROM query_history ORDER BY created_at DESC, id LIMIT ?
		)
	`, s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to prune history: %w", err)
	}

	return &e, nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, question, sql_text, dialect, row_count, elapsed_ms, error
		FROM query_history
		ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.CreatedAt, &e.Question, &e.SQL, &e.Dialect, &e.RowCount, &e.ElapsedMS, &e.Error); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Clear removes all entries.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM query_history`); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}
