package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Gemini generates answers through the Gemini API.
type Gemini struct {
	generate    generateContentFunc
	model       string
	temperature float32
	maxTokens   int32
	timeout     time.Duration
}

type generateContentFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// NewGemini builds a Gemini generator. Each Generate call is bounded by
// timeout, or by ten minutes when timeout is not positive.
func NewGemini(ctx context.Context, apiKey, model string, temperature float64, maxTokens int, timeout time.Duration) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is empty")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &Gemini{
		generate:    client.Models.GenerateContent,
		model:       model,
		temperature: float32(temperature),
		maxTokens:   int32(maxTokens),
		timeout:     timeout,
	}, nil
}

func (g *Gemini) ModelName() string {
	return g.model
}

// Ping is a no-op; the SDK has no cheap liveness call.
func (g *Gemini) Ping(context.Context) error {
	return nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.generate(
		ctx,
		g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{
			Temperature:     genai.Ptr(g.temperature),
			MaxOutputTokens: g.maxTokens,
		},
	)
	if err != nil {
		return "", classify(err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
