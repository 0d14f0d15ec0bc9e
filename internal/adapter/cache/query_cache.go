package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"coderag/internal/port"
)

// CachedEmbedder keeps recent embeddings in an LRU keyed by model and text.
// Repeated queries skip the provider round trip.
type CachedEmbedder struct {
	next   port.Embedder
	cache  *lru.Cache[string, []float32]
	logger *zap.Logger
}

// NewCachedEmbedder returns next unchanged when size is not positive.
func NewCachedEmbedder(next port.Embedder, size int, logger *zap.Logger) (port.Embedder, error) {
	if size <= 0 {
		return next, nil
	}
	c, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{next: next, cache: c, logger: logger}, nil
}

func cacheKey(model, text string) string {
	data := append([]byte(model), 0)
	data = append(data, text...)
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:16])
}

func (c *CachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	model := c.next.ModelName()

	var missTexts []string
	var missIdx []int
	for i, text := range texts {
		if v, ok := c.cache.Get(cacheKey(model, text)); ok {
			out[i] = clone(v)
			continue
		}
		missTexts = append(missTexts, text)
		missIdx = append(missIdx, i)
	}
	if len(missTexts) == 0 {
		c.logger.Debug("embedding cache hit", zap.Int("texts", len(texts)))
		return out, nil
	}

	fresh, err := c.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(fresh), len(missTexts))
	}
	for j, vec := range fresh {
		out[missIdx[j]] = vec
		c.cache.Add(cacheKey(model, missTexts[j]), clone(vec))
	}
	return out, nil
}

func (c *CachedEmbedder) ModelName() string {
	return c.next.ModelName()
}

// Len reports how many embeddings are cached.
func (c *CachedEmbedder) Len() int {
	return c.cache.Len()
}

func clone(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
