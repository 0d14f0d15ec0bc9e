package llm

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"coderag/config"
	"coderag/internal/port"
)

// New builds the generator named by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (port.LLM, error) {
	switch cfg.Provider {
	case "", "ollama":
		baseURL := fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
		return NewOllama(baseURL, cfg.Model, OllamaOptions{
			Temperature: cfg.Temperature,
			NumPredict:  cfg.MaxTokens,
			NumCtx:      cfg.ContextWindow,
		}, cfg.Timeout, logger), nil
	case "gemini":
		return NewGemini(ctx, config.APIKey(cfg.APIKeyEnv), cfg.Model, cfg.Temperature, cfg.MaxTokens, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
