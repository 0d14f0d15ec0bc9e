package cli

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"coderag/config"
	"coderag/internal/adapter/cache"
	"coderag/internal/adapter/chunker"
	"coderag/internal/adapter/embedding"
	"coderag/internal/adapter/fs"
	"coderag/internal/adapter/llm"
	"coderag/internal/adapter/memstore"
	"coderag/internal/adapter/store"
	"coderag/internal/port"
	"coderag/internal/usecase"
)

func openStore(cfg *config.Config) (port.VectorStore, error) {
	switch cfg.Store.Backend {
	case "bolt":
		return store.NewBoltStore(cfg.Store.Path)
	case "memory":
		return memstore.NewMemoryStore(), nil
	default:
		return store.NewQdrantStore(cfg.Store.URL, cfg.Store.Port)
	}
}

// newEmbedder builds the configured embedder. Query paths wrap it in the LRU.
func newEmbedder(ctx context.Context, cfg *config.Config, cached bool, logger *zap.Logger) (port.Embedder, error) {
	e, err := embedding.New(ctx, cfg.Embedding)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	if !cached {
		return e, nil
	}
	return cache.NewCachedEmbedder(e, cfg.Embedding.CacheSize, logger)
}

func newIndexUseCase(ctx context.Context, cfg *config.Config, st port.VectorStore, logger *zap.Logger) (*usecase.IndexUseCase, error) {
	emb, err := newEmbedder(ctx, cfg, false, logger)
	if err != nil {
		return nil, err
	}
	walker := fs.NewWalker(
		cfg.Index.Extensions,
		cfg.Index.ExcludedDirs,
		chunker.NewSegmenter(cfg.Index.MaxLines),
		logger,
	)
	return usecase.NewIndexUseCase(st, emb, walker, usecase.IndexOptions{
		Collection:          cfg.Store.CollectionName,
		BatchSize:           cfg.Index.BatchSize,
		RecreateOnMismatch:  cfg.Store.RecreateOnMismatch,
		ContentAddressedIDs: cfg.Index.ContentAddressedIDs,
	}, logger), nil
}

func newQueryUseCase(ctx context.Context, cfg *config.Config, st port.VectorStore, logger *zap.Logger) (*usecase.QueryUseCase, error) {
	emb, err := newEmbedder(ctx, cfg, true, logger)
	if err != nil {
		return nil, err
	}
	model, err := llm.New(ctx, cfg.LLM, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm: %w", err)
	}
	return usecase.NewQueryUseCase(st, emb, model, cfg.Store.CollectionName, logger), nil
}
