package adapter

import (
	"context"
	"fmt"
	"log/slog"

	"database/sql"
)

// BaseSQLAdapter provides the database/sql plumbing shared by every
// adapter. Concrete adapters embed it and implement Connect, Introspect
// and DialectName.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Close closes the database connection.
func (a *BaseSQLAdapter) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

// Query executes a SQL statement that returns rows.
func (a *BaseSQLAdapter) Query(ctx context.Context, sqlStr string) (*Rows, error) {
	if a.DB == nil {
		return nil, fmt.Errorf("database connection not established")
	}

	//nolint:rowserrcheck // rows.Err() must be checked by caller after iteration completes
	rows, err := a.DB.QueryContext(ctx, sqlStr)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}

	return &Rows{Rows: rows}, nil
}
