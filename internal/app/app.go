// Package app wires configuration into the store, search engine and indexer
// shared by every binary.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/treerag/internal/config"
	"github.com/dgallion1/treerag/internal/parser"
	"github.com/dgallion1/treerag/internal/pipeline"
	"github.com/dgallion1/treerag/internal/search"
	"github.com/dgallion1/treerag/internal/store"
	"github.com/dgallion1/treerag/internal/summarize"
)

// App is the assembled service.
type App struct {
	Config  config.Config
	Log     *slog.Logger
	Store   store.Store
	Engine  *search.Engine
	Indexer *pipeline.Indexer
	// Stats is nil when summaries are disabled.
	Stats *summarize.LLMStats

	claude *summarize.ClaudeClient
}

// New validates cfg and opens the configured store.
func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	st, err := store.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.StoreBackend, err)
	}

	a := &App{
		Config: cfg,
		Log:    log,
		Store:  st,
		Engine: search.NewEngine(st, log),
	}

	var sum *summarize.Summarizer
	if cfg.SummariesEnabled {
		a.Stats = summarize.NewLLMStats(time.Hour)
		a.claude = summarize.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel, a.Stats)
		sum = summarize.New(a.claude, summarize.Options{
			TokenThreshold: cfg.SummaryTokenThreshold,
			Concurrency:    cfg.MaxConcurrentSummarize,
			Describe:       true,
		}, log)
		log.Info("node summaries enabled", "model", cfg.AnthropicModel, "threshold", cfg.SummaryTokenThreshold)
	}

	a.Indexer = pipeline.NewIndexer(st, sum, parser.Options{PDFFallbackPdftotext: cfg.PDFFallbackPdftotext}, log)
	return a, nil
}

// Close releases the store and LLM client.
func (a *App) Close() error {
	if a.claude != nil {
		a.claude.Close()
	}
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	return nil
}
