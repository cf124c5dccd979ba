// Package service orchestrates question answering: prompt construction,
// SQL generation, post-processing and execution.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/askql/askql/internal/adapter"
	"github.com/askql/askql/internal/history"
	"github.com/askql/askql/internal/llm"
	"github.com/askql/askql/internal/prompt"
	"github.com/askql/askql/internal/schema"
	"github.com/askql/askql/internal/sqlfix"
)

// ErrNotSelect is returned when generated or supplied SQL is not a SELECT
// statement. Only reads are ever executed.
var ErrNotSelect = errors.New("only SELECT statements can be executed")

var selectOnlyRe = regexp.MustCompile(`(?i)^\s*select\b`)

// Executor runs read queries. Satisfied by adapter implementations.
type Executor interface {
	Query(ctx context.Context, sql string) (*adapter.Rows, error)
}

// Result is the outcome of executing one query.
type Result struct {
	SQL       string   `json:"sql"`
	Columns   []string `json:"columns"`
	Kinds     []string `json:"kinds"`
	Rows      [][]any  `json:"rows"`
	RowCount  int      `json:"row_count"`
	ElapsedMS int64    `json:"elapsed_ms"`
}

// Service answers natural-language questions against one connected database.
type Service struct {
	gen     llm.Generator
	exec    Executor
	schema  *schema.Schema
	dialect string
	history *history.Store
	logger  *slog.Logger
}

// New creates a Service. history may be nil to disable recording.
func New(gen llm.Generator, exec Executor, sc *schema.Schema, dialect string, hist *history.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		gen:     gen,
		exec:    exec,
		schema:  sc,
		dialect: dialect,
		history: hist,
		logger:  logger,
	}
}

// Schema returns the introspected schema the service answers against.
func (s *Service) Schema() *schema.Schema {
	return s.schema
}

// Dialect returns the SQL dialect tag of the connected database.
func (s *Service) Dialect() string {
	return s.dialect
}

// GenerateSQL produces executable SQL for a question. tables, when
// non-empty, restricts the schema shown to the model. The raw model output
// is run through the repair pipeline before being returned.
func (s *Service) GenerateSQL(ctx context.Context, question string, tables []string) (string, error) {
	sc := s.schema.Subset(tables)

	p := prompt.Build(question, sc, s.dialect)
	raw, err := s.gen.Generate(ctx, p)
	if err != nil {
		return "", err
	}

	fixed := sqlfix.Apply(sqlfix.Context{
		Question:    question,
		Dialect:     s.dialect,
		TextColumns: sc.TextColumns(),
		DateColumns: sc.DateLikeColumns(),
	}, raw)

	s.logger.Debug("generated sql", "question", question, "sql", fixed)
	return fixed, nil
}

// Ask generates SQL for the question and executes it.
func (s *Service) Ask(ctx context.Context, question string, tables []string) (*Result, error) {
	sqlText, err := s.GenerateSQL(ctx, question, tables)
	if err != nil {
		return nil, err
	}
	return s.Run(ctx, question, sqlText)
}

// Run executes sqlText, which must be a SELECT, and records the outcome in
// history. question is stored alongside for context and may be empty when
// the SQL was hand-written.
func (s *Service) Run(ctx context.Context, question, sqlText string) (*Result, error) {
	if !selectOnlyRe.MatchString(sqlText) {
		return nil, fmt.Errorf("%w: %q", ErrNotSelect, firstLine(sqlText))
	}

	start := time.Now()
	rows, err := s.exec.Query(ctx, sqlText)
	if err != nil {
		s.record(ctx, question, sqlText, 0, time.Since(start), err)
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration failed: %w", err)
	}

	elapsed := time.Since(start)
	res := &Result{
		SQL:       sqlText,
		Columns:   cols,
		Kinds:     columnKinds(cols, data),
		Rows:      data,
		RowCount:  len(data),
		ElapsedMS: elapsed.Milliseconds(),
	}

	s.record(ctx, question, sqlText, res.RowCount, elapsed, nil)
	return res, nil
}

// History returns the recorded entries, newest first, or nil when history
// is disabled.
func (s *Service) History(ctx context.Context) ([]history.Entry, error) {
	if s.history == nil {
		return nil, nil
	}
	return s.history.List(ctx)
}

// ClearHistory removes all recorded entries.
func (s *Service) ClearHistory(ctx context.Context) error {
	if s.history == nil {
		return nil
	}
	return s.history.Clear(ctx)
}

// record appends to history best-effort. A history failure never fails the
// query that produced it.
func (s *Service) record(ctx context.Context, question, sqlText string, rowCount int, elapsed time.Duration, qerr error) {
	if s.history == nil {
		return
	}
	e := history.Entry{
		Question:  question,
		SQL:       sqlText,
		Dialect:   s.dialect,
		RowCount:  rowCount,
		ElapsedMS: elapsed.Milliseconds(),
	}
	if qerr != nil {
		e.Error = qerr.Error()
	}
	if _, err := s.history.Append(ctx, e); err != nil {
		s.logger.Warn("failed to record history entry", "error", err)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// columnKinds labels each result column date, number or text from its name
// and the first non-nil value. Rendering hints only, never load-bearing.
func columnKinds(cols []string, rows [][]any) []string {
	kinds := make([]string, len(cols))
	for i, name := range cols {
		kinds[i] = kindOf(name, sampleValue(rows, i))
	}
	return kinds
}

func sampleValue(rows [][]any, col int) any {
	for _, r := range rows {
		if col < len(r) && r[col] != nil {
			return r[col]
		}
	}
	return nil
}

var dateColNameRe = regexp.MustCompile(`(?i)(date|month|day|year|period|time)$`)

func kindOf(name string, v any) string {
	if dateColNameRe.MatchString(name) {
		return "date"
	}
	switch v.(type) {
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return "number"
	case time.Time:
		return "date"
	}
	return "text"
}
