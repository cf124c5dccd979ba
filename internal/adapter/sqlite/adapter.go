// Package sqlite provides a SQLite database adapter for askql.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/askql/askql/internal/adapter"
	"github.com/askql/askql/internal/schema"
	_ "modernc.org/sqlite" // cgo-free sqlite driver
)

func init() {
	adapter.Register("sqlite", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}

// Adapter implements the adapter.Adapter interface for SQLite.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: adapter.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect tag for this adapter.
func (a *Adapter) DialectName() string {
	return "sqlite"
}

// Connect opens the SQLite database. Use ":memory:" as the path for an
// in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("opening sqlite database", slog.String("path", path))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// Introspect builds the schema descriptor from sqlite_master and the
// table_info/foreign_key_list pragmas.
func (a *Adapter) Introspect(ctx context.Context) (*schema.Schema, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := &schema.Schema{}
	for _, table := range tables {
		cols, err := a.tableColumns(ctx, table)
		if err != nil {
			return nil, err
		}
		out.Tables = append(out.Tables, schema.Table{Name: table, Columns: cols})
	}
	return out, nil
}

func (a *Adapter) tableColumns(ctx context.Context, table string) ([]schema.Column, error) {
	fks, err := a.foreignKeyColumns(ctx, table)
	if err != nil {
		return nil, err
	}

	rows, err := a.DB.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%q)`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to read table_info for %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var cols []schema.Column
	for rows.Next() {
		var (
			cid     int
			name    string
			ctype   string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notNull, &dflt, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan table_info row: %w", err)
		}
		cols = append(cols, schema.Column{
			Name:       name,
			Type:       ctype,
			PrimaryKey: pk > 0,
			ForeignKey: fks[name],
		})
	}
	return cols, rows.Err()
}

func (a *Adapter) foreignKeyColumns(ctx context.Context, table string) (map[string]string, error) {
	rows, err := a.DB.QueryContext(ctx, fmt.Sprintf(`PRAGMA foreign_key_list(%q)`, table))
	if err != nil {
		return nil, fmt.Errorf("failed to read foreign_key_list for %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	fks := make(map[string]string)
	for rows.Next() {
		var (
			id, seq                   int
			refTable, from            string
			to                        sql.NullString // NULL when referencing the implicit rowid PK
			onUpdate, onDelete, match string
		)
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, fmt.Errorf("failed to scan foreign_key_list row: %w", err)
		}
		ref := refTable
		if to.Valid {
			ref += "." + to.String
		}
		fks[from] = ref
	}
	return fks, rows.Err()
}
