package embedding

import (
	"context"
	"errors"
	"fmt"

	"coderag/config"
	"coderag/internal/port"
)

// ProbeText is embedded once to learn the provider's vector size.
const ProbeText = "Test"

// New builds the embedder named by cfg.Provider.
func New(ctx context.Context, cfg config.EmbeddingConfig) (port.Embedder, error) {
	switch cfg.Provider {
	case "ollama":
		return NewOllamaEmbedder(cfg.Model, cfg.BaseURL), nil
	case "openai":
		return NewOpenAIEmbedder(config.APIKey(cfg.APIKeyEnv), cfg.Model, cfg.BaseURL)
	case "gemini":
		return NewGeminiEmbedder(ctx, config.APIKey(cfg.APIKeyEnv), cfg.Model)
	case "mock":
		return NewMockEmbedder(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}

// ProbeDimension embeds ProbeText and reports the resulting vector length.
func ProbeDimension(ctx context.Context, e port.Embedder) (int, error) {
	vecs, err := e.Embed(ctx, []string{ProbeText})
	if err != nil {
		return 0, fmt.Errorf("probe embedding dimension: %w", err)
	}
	if len(vecs) != 1 || len(vecs[0]) == 0 {
		return 0, errors.New("probe embedding dimension: empty vector")
	}
	return len(vecs[0]), nil
}
