package adapter

import (
	"context"
	"log/slog"
	"testing"

	"github.com/askql/askql/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAdapter struct {
	BaseSQLAdapter
}

func (s *stubAdapter) Connect(context.Context, Config) error { return nil }
func (s *stubAdapter) Introspect(context.Context) (*schema.Schema, error) {
	return &schema.Schema{}, nil
}
func (s *stubAdapter) DialectName() string { return "stub" }

func TestRegistry(t *testing.T) {
	Register("stub", func(*slog.Logger) Adapter { return &stubAdapter{} })

	f, ok := Get("stub")
	require.True(t, ok)
	assert.Equal(t, "stub", f(nil).DialectName())

	assert.Contains(t, List(), "stub")
}

func TestNewUnknownType(t *testing.T) {
	_, err := New(Config{Type: "no-such-engine"}, nil)
	require.Error(t, err)

	var unknownErr *UnknownAdapterError
	require.ErrorAs(t, err, &unknownErr)
	assert.Equal(t, "no-such-engine", unknownErr.Type)
}

func TestNewEmptyType(t *testing.T) {
	_, err := New(Config{}, nil)
	assert.Error(t, err)
}
