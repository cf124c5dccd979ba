package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Append(ctx, Entry{
		Question:  "total sales by month",
		SQL:       "SELECT 1",
		Dialect:   "sqlite",
		RowCount:  3,
		ElapsedMS: 12,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	_, err = s.Append(ctx, Entry{
		Question:  "top customers",
		SQL:       "SELECT 2",
		CreatedAt: first.CreatedAt.Add(time.Second),
	})
	require.NoError(t, err)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "top customers", entries[0].Question)
	assert.Equal(t, "total sales by month", entries[1].Question)
}

func TestAppendPrunesToLimit(t *testing.T) {
	s, err := Open(":memory:", 5)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		_, err := s.Append(ctx, Entry{
			Question:  fmt.Sprintf("question %d", i),
			SQL:       "SELECT 1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, "question 7", entries[0].Question)
	assert.Equal(t, "question 3", entries[4].Question)
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Append(ctx, Entry{Question: "q", SQL: "SELECT 1"})
	require.NoError(t, err)

	require.NoError(t, s.Clear(ctx))

	entries, err := s.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRecordsError(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Append(ctx, Entry{Question: "broken", SQL: "SELECT nope", Error: "no such column: nope"})
	require.NoError(t, err)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "no such column: nope", entries[0].Error)
}
