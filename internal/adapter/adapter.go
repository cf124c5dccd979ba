// Package adapter provides database adapter interfaces and implementations
// for askql's query execution and schema introspection.
package adapter

import (
	"context"
	"database/sql"

	"github.com/askql/askql/internal/schema"
)

// Config holds the configuration for connecting to a database.
type Config struct {
	// Type specifies the database type (e.g., "postgres", "sqlite", "duckdb")
	Type string

	// Path is the file path for file-based databases (SQLite, DuckDB).
	// Use ":memory:" for in-memory databases
	Path string

	// Host is the hostname for network-based databases
	Host string

	// Port is the port number for network-based databases
	Port int

	// Database is the database name
	Database string

	// Username for authentication
	Username string

	// Password for authentication
	Password string

	// Options contains additional driver-specific options
	Options map[string]string
}

// Rows wraps sql.Rows to provide a consistent interface across adapters.
type Rows struct {
	*sql.Rows
}

// Adapter defines the interface that all database adapters must implement.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Query executes a SQL statement that returns rows.
	Query(ctx context.Context, sql string) (*Rows, error)

	// Introspect returns the full schema descriptor: every user table with
	// its columns, declared types, primary keys and foreign key references.
	Introspect(ctx context.Context) (*schema.Schema, error)

	// DialectName returns the SQL dialect tag for this adapter
	// (e.g. "postgresql", "sqlite"). The rewrite pipeline and the prompt
	// builder key their dialect-specific behavior on it.
	DialectName() string
}
