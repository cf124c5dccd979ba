// Package commands implements the askql subcommands.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/askql/askql/internal/adapter"
	"github.com/askql/askql/internal/config"
	"github.com/askql/askql/internal/history"
	"github.com/askql/askql/internal/llm"
	"github.com/askql/askql/internal/service"

	// registered database adapters
	_ "github.com/askql/askql/internal/adapter/duckdb"
	_ "github.com/askql/askql/internal/adapter/postgres"
	_ "github.com/askql/askql/internal/adapter/sqlite"
)

type appKey struct{}

// app bundles what every command needs from the persistent pre-run.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
}

// WithApp stores the loaded config and logger in the command context.
func WithApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, appKey{}, &app{cfg: cfg, logger: logger})
}

func appFrom(ctx context.Context) *app {
	if a, ok := ctx.Value(appKey{}).(*app); ok {
		return a
	}
	return &app{cfg: &config.Config{}, logger: slog.New(slog.DiscardHandler)}
}

// buildService connects to the configured database, introspects its schema
// and assembles the question answering service. The returned cleanup
// closes the adapter and the history store.
func buildService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*service.Service, func(), error) {
	acfg := adapter.Config{
		Type:     cfg.Database.Type,
		Path:     cfg.Database.Path,
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Name,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		Options:  cfg.Database.Options,
	}

	ad, err := adapter.New(acfg, logger)
	if err != nil {
		return nil, nil, err
	}

	if err := ad.Connect(ctx, acfg); err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sc, err := ad.Introspect(ctx)
	if err != nil {
		_ = ad.Close()
		return nil, nil, fmt.Errorf("failed to introspect schema: %w", err)
	}

	gen := llm.NewGemini(llm.GeminiConfig{
		APIKey:          cfg.LLM.APIKey,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		TopP:            cfg.LLM.TopP,
		TopK:            cfg.LLM.TopK,
		MaxOutputTokens: cfg.LLM.MaxOutputTokens,
	}, logger)

	var hist *history.Store
	if cfg.History.Path != "" {
		hist, err = history.Open(cfg.History.Path, cfg.History.Limit)
		if err != nil {
			// History is a convenience; a broken store should not stop queries.
			logger.Warn("query history disabled", "error", err)
			hist = nil
		}
	}

	svc := service.New(gen, ad, sc, ad.DialectName(), hist, logger)

	cleanup := func() {
		if hist != nil {
			_ = hist.Close()
		}
		_ = ad.Close()
	}
	return svc, cleanup, nil
}
