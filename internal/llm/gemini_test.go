package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeminiGenerate(t *testing.T) {
	var gotPath string
	var gotReq geminiRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{
					{"text": "SELECT 1"},
					{"text": " FROM t"},
				}}},
			},
		})
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{
		APIKey:      "k",
		Model:       "gemini-2.0-flash",
		BaseURL:     srv.URL,
		Temperature: 0.15,
	}, nil)

	out, err := g.Generate(context.Background(), "question")
	require.NoError(t, err)
	assert.Equal(t, "SELECT 1 FROM t", out)
	assert.Equal(t, "/models/gemini-2.0-flash:generateContent", gotPath)
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "question", gotReq.Contents[0].Parts[0].Text)
}

func TestGeminiGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded","status":"RESOURCE_EXHAUSTED"}}`))
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{APIKey: "k", BaseURL: srv.URL}, nil)

	_, err := g.Generate(context.Background(), "q")
	require.Error(t, err)

	var genErr *GenerateError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, "gemini", genErr.Provider)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGeminiGenerateEmptyCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	g := NewGemini(GeminiConfig{APIKey: "k", BaseURL: srv.URL}, nil)

	_, err := g.Generate(context.Background(), "q")
	var genErr *GenerateError
	require.True(t, errors.As(err, &genErr))
}

func TestGeminiGenerateNetworkError(t *testing.T) {
	g := NewGemini(GeminiConfig{APIKey: "k", BaseURL: "http://127.0.0.1:0"}, nil)

	_, err := g.Generate(context.Background(), "q")
	var genErr *GenerateError
	require.True(t, errors.As(err, &genErr))
}
