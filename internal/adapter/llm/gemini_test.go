package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"coderag/config"
)

func TestGeminiGenerate(t *testing.T) {
	var hasDeadline bool
	g := &Gemini{
		model:   "gemini-test",
		timeout: time.Minute,
		generate: func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			_, hasDeadline = ctx.Deadline()
			assert.Equal(t, "gemini-test", model)
			assert.Equal(t, "explain main", contents[0].Parts[0].Text)
			return &genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []*genai.Part{{Text: " it starts the server \n"}}},
				}},
			}, nil
		},
	}

	answer, err := g.Generate(context.Background(), "explain main")

	require.NoError(t, err)
	assert.Equal(t, "it starts the server", answer)
	assert.True(t, hasDeadline)
}

func TestGeminiTimeout(t *testing.T) {
	g := &Gemini{
		model:   "gemini-test",
		timeout: 20 * time.Millisecond,
		generate: func(ctx context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	_, err := g.Generate(context.Background(), "slow question")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestNewGeminiUsesConfiguredTimeout(t *testing.T) {
	t.Setenv("CODERAG_TEST_GEMINI_KEY", "test-key")

	model, err := New(context.Background(), config.LLMConfig{
		Provider:  "gemini",
		Model:     "gemini-test",
		APIKeyEnv: "CODERAG_TEST_GEMINI_KEY",
		Timeout:   3 * time.Second,
	}, nil)
	require.NoError(t, err)

	g, ok := model.(*Gemini)
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, g.timeout)
}

func TestNewGeminiRequiresKey(t *testing.T) {
	_, err := NewGemini(context.Background(), "", "gemini-test", 0.1, 1024, time.Minute)
	assert.Error(t, err)
}
