package port

import "context"

// LLM represents a language model for text generation.
type LLM interface {
	// Generate generates text based on the prompt.
	Generate(ctx context.Context, prompt string) (string, error)

	// Ping checks that the model host answers at all.
	Ping(ctx context.Context) error

	// ModelName returns the name of the model.
	ModelName() string
}
