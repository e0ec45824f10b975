// ABOUTME: Shared pipeline construction for CLI commands
// ABOUTME: Loads config, builds the embedding index, and wires the query agent
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/finrag/finrag/internal/agent"
	"github.com/finrag/finrag/internal/config"
	"github.com/finrag/finrag/internal/corpus"
	"github.com/finrag/finrag/internal/embed"
	"github.com/finrag/finrag/internal/index"
)

// loadConfig loads .env (if present) and the environment configuration.
func loadConfig() (*config.Config, error) {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return cfg, nil
}

// buildIndex constructs the embedding index, loading the cache snapshot when
// valid and re-encoding the corpus otherwise.
func buildIndex(ctx context.Context, cfg *config.Config, log *slog.Logger, forceRebuild bool) (*index.Index, error) {
	embedder, err := embed.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}

	chunks, err := corpus.NewStore(cfg, log).Load()
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}

	ix := index.New(embedder, filepath.Join(cfg.VectorStoreDir(), index.CacheFile), log)
	if err := ix.Build(ctx, chunks, forceRebuild); err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	return ix, nil
}

// buildAgent wires the full query pipeline.
func buildAgent(ctx context.Context, cfg *config.Config, log *slog.Logger) (*agent.Agent, *index.Index, error) {
	ix, err := buildIndex(ctx, cfg, log, false)
	if err != nil {
		return nil, nil, err
	}
	return agent.New(ix, cfg, log), ix, nil
}
