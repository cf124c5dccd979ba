// Package postgres provides a PostgreSQL database adapter for askql.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/askql/askql/internal/adapter"
	"github.com/askql/askql/internal/schema"
	_ "github.com/jackc/pgx/v5/stdlib" // pgx database/sql driver
)

func init() {
	adapter.Register("postgres", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}

// Adapter implements the adapter.Adapter interface for PostgreSQL.
type Adapter struct {
	adapter.BaseSQLAdapter
}

// New creates a new PostgreSQL adapter instance.
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
	return "postgresql"
}

// Connect establishes a connection to PostgreSQL.
func (a *Adapter) Connect(ctx context.Context, cfg adapter.Config) error {
	dsn := buildDSN(cfg)

	a.Logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("failed to open postgres connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping postgres: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// buildDSN constructs a PostgreSQL connection string.
func buildDSN(cfg adapter.Config) string {
	host := cfg.Host
	if host == "" {
		host = "localhost"
	}

	port := cfg.Port
	if port == 0 {
		port = 5432
	}

	sslmode := "disable"
	if cfg.Options != nil {
		if mode, ok := cfg.Options["sslmode"]; ok {
			sslmode = mode
		}
	}

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s sslmode=%s",
		host, port, cfg.Database, sslmode)

	if cfg.Username != "" {
		dsn += fmt.Sprintf(" user=%s", cfg.Username)
	}
	if cfg.Password != "" {
		dsn += fmt.Sprintf(" password=%s", cfg.Password)
	}

	return dsn
}

// Introspect builds the schema descriptor from information_schema: every
// base table in the public schema with column types, primary keys and
// foreign key references.
func (a *Adapter) Introspect(ctx context.Context) (*schema.Schema, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	tables, err := a.tableNames(ctx)
	if err != nil {
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

func (a *Adapter) tableNames(ctx context.Context) ([]string, error) {
	rows, err := a.DB.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (a *Adapter) tableColumns(ctx context.Context, table string) ([]schema.Column, error) {
	pks, err := a.primaryKeyColumns(ctx, table)
	if err != nil {
		return nil, err
	}
	fks, err := a.foreignKeyColumns(ctx, table)
	if err != nil {
		return nil, err
	}

	rows, err := a.DB.QueryContext(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query column metadata: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cols []schema.Column
	for rows.Next() {
		var col schema.Column
		if err := rows.Scan(&col.Name, &col.Type); err != nil {
			return nil, fmt.Errorf("failed to scan column metadata: %w", err)
		}
		_, col.PrimaryKey = pks[col.Name]
		col.ForeignKey = fks[col.Name]
		cols = append(cols, col)
	}
	return cols, rows.Err()
}

func (a *Adapter) primaryKeyColumns(ctx context.Context, table string) (map[string]struct{}, error) {
	rows, err := a.DB.QueryContext(ctx, `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		WHERE tc.table_schema = 'public'
		  AND tc.table_name = $1
		  AND tc.constraint_type = 'PRIMARY KEY'
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query primary keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	pks := make(map[string]struct{})
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan primary key: %w", err)
		}
		pks[name] = struct{}{}
	}
	return pks, rows.Err()
}

func (a *Adapter) foreignKeyColumns(ctx context.Context, table string) (map[string]string, error) {
	rows, err := a.DB.QueryContext(ctx, `
		SELECT kcu.column_name, ccu.table_name, ccu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
		  ON tc.constraint_name = ccu.constraint_name
		 AND tc.table_schema = ccu.table_schema
		WHERE tc.table_schema = 'public'
		  AND tc.table_name = $1
		  AND tc.constraint_type = 'FOREIGN KEY'
	`, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	defer func() { _ = rows.Close() }()

	fks := make(map[string]string)
	for rows.Next() {
		var col, refTable, refCol string
		if err := rows.Scan(&col, &refTable, &refCol); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		fks[col] = refTable + "." + refCol
	}
	return fks, rows.Err()
}
