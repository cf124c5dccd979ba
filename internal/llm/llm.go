// Package llm abstracts the text-generation backend behind a single
// interface so the query service can be exercised with a fake in tests.
package llm

import "context"

// Generator produces raw model text for a prompt. Implementations own
// transport, auth and retry policy (there is none: one failed call is
// fatal to generation).
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerateError wraps any failure of the upstream model call. It is the
// only error the SQL generation path treats as fatal; everything after the
// model call is a total text transformation.
type GenerateError struct {
	Provider string
	Err      error
}

func (e *GenerateError) Error() string {
	return e.Provider + " generation failed: " + e.Err.Error()
}

func (e *GenerateError) Unwrap() error {
	return e.Err
}
