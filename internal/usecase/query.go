package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"coderag/internal/domain"
	"coderag/internal/port"
)

const (
	DefaultTopK   = 5
	previewLength = 200
)

// ErrEmptyQuery is returned for a blank query string.
var ErrEmptyQuery = errors.New("query must not be empty")

// QueryUseCase answers a question from retrieved code snippets.
type QueryUseCase struct {
	store      port.VectorStore
	embedder   port.Embedder
	llm        port.LLM
	collection string
	logger     *zap.Logger
}

func NewQueryUseCase(vectors port.VectorStore, embedder port.Embedder, llm port.LLM, collection string, logger *zap.Logger) *QueryUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QueryUseCase{
		store:      vectors,
		embedder:   embedder,
		llm:        llm,
		collection: collection,
		logger:     logger,
	}
}

// Retrieve embeds the query and returns the raw search hits.
func (u *QueryUseCase) Retrieve(ctx context.Context, query string, topK int) ([]port.VectorResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	vectors, err := u.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embed query: got %d vectors", len(vectors))
	}

	hits, err := u.store.Search(ctx, u.collection, vectors[0], topK)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", u.collection, err)
	}
	return hits, nil
}

// Query retrieves context, builds the prompt for the task type and asks the
// model. LLM errors are returned as is for errors.Is and errors.As.
func (u *QueryUseCase) Query(ctx context.Context, req domain.QueryRequest) (*domain.QueryResponse, error) {
	hits, err := u.Retrieve(ctx, req.Query, req.TopK)
	if err != nil {
		return nil, err
	}

	contexts := make([]string, len(hits))
	sources := make([]domain.Source, len(hits))
	for i, h := range hits {
		contexts[i] = h.Text
		sources[i] = ToSource(h)
	}

	prompt, err := BuildPrompt(req.TaskType, req.Query, contexts)
	if err != nil {
		return nil, err
	}

	if err := u.llm.Ping(ctx); err != nil {
		u.logger.Warn("failed to ping LLM", zap.Error(err))
	}

	answer, err := u.llm.Generate(ctx, prompt)
	if err != nil {
		u.logger.Error("LLM generation failed", zap.String("model", u.llm.ModelName()), zap.Error(err))
		return nil, err
	}

	return &domain.QueryResponse{Answer: answer, Sources: sources}, nil
}

// ToSource turns a search hit into the preview returned to clients.
func ToSource(h port.VectorResult) domain.Source {
	return domain.Source{
		Text:     Preview(h.Text),
		FilePath: h.Metadata.FilePath,
		RepoName: h.Metadata.RepoName,
		Score:    math.Round(h.Score*1000) / 1000,
	}
}

// Preview keeps the first 200 characters and always appends "...".
func Preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewLength {
		runes = runes[:previewLength]
	}
	return string(runes) + "..."
}
