package adapter

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseSQLAdapter_Close(t *testing.T) {
	tests := []struct {
		name    string
		setupDB bool
	}{
		{name: "close with nil DB", setupDB: false},
		{name: "close with open DB", setupDB: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := &BaseSQLAdapter{}

			if tt.setupDB {
				db, mock, err := sqlmock.New()
				require.NoError(t, err)
				mock.ExpectClose()
				base.DB = db
			}

			assert.NoError(t, base.Close())
		})
	}
}

func TestBaseSQLAdapter_Query(t *testing.T) {
	t.Run("query without connection", func(t *testing.T) {
		base := &BaseSQLAdapter{}
		_, err := base.Query(context.Background(), "SELECT 1")
		assert.ErrorContains(t, err, "not established")
	})

	t.Run("query returns rows", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("SELECT region").WillReturnRows(
			sqlmock.NewRows([]string{"region", "total"}).AddRow("EU", 42),
		)

		base := &BaseSQLAdapter{DB: db}
		rows, err := base.Query(context.Background(), "SELECT region, total FROM t")
		require.NoError(t, err)
		defer func() { _ = rows.Close() }()

		cols, err := rows.Columns()
		require.NoError(t, err)
		assert.Equal(t, []string{"region", "total"}, cols)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
