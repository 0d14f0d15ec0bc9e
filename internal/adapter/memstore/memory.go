package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"coderag/internal/adapter/store"
	"coderag/internal/port"
)

// MemoryStore is a process-local VectorStore. Everything is lost on exit.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

type collection struct {
	dimension int
	distance  port.Distance
	points    map[string]port.VectorItem
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]*collection)}
}

func (s *MemoryStore) ListCollections(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStore) CollectionInfo(_ context.Context, name string) (port.CollectionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return port.CollectionInfo{}, fmt.Errorf("%w: %s", store.ErrCollectionNotFound, name)
	}
	return port.CollectionInfo{
		Name:      name,
		Dimension: c.dimension,
		Distance:  c.distance,
		Points:    len(c.points),
	}, nil
}

func (s *MemoryStore) CreateCollection(_ context.Context, name string, dimension int, distance port.Distance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; ok {
		return fmt.Errorf("collection already exists: %s", name)
	}
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	s.collections[name] = &collection{
		dimension: dimension,
		distance:  distance,
		points:    make(map[string]port.VectorItem),
	}
	return nil
}

func (s *MemoryStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[name]; !ok {
		return fmt.Errorf("%w: %s", store.ErrCollectionNotFound, name)
	}
	delete(s.collections, name)
	return nil
}

func (s *MemoryStore) Upsert(_ context.Context, name string, items []port.VectorItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("%w: %s", store.ErrCollectionNotFound, name)
	}
	for _, item := range items {
		if len(item.Vector) != c.dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", c.dimension, len(item.Vector))
		}
	}
	for _, item := range items {
		c.points[item.ID] = item
	}
	return nil
}

func (s *MemoryStore) Search(_ context.Context, name string, query []float32, k int) ([]port.VectorResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrCollectionNotFound, name)
	}
	if len(query) != c.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", c.dimension, len(query))
	}

	results := make([]port.VectorResult, 0, len(c.points))
	for id, p := range c.points {
		results = append(results, port.VectorResult{
			ID:       id,
			Score:    store.Score(c.distance, query, p.Vector),
			Text:     p.Text,
			Metadata: p.Metadata,
		})
	}
	return store.TopK(results, k), nil
}

func (s *MemoryStore) Count(_ context.Context, name string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", store.ErrCollectionNotFound, name)
	}
	return len(c.points), nil
}

// IDs returns the point ids of a collection in sorted order.
func (s *MemoryStore) IDs(name string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.collections[name]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(c.points))
	for id := range c.points {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *MemoryStore) Close() error {
	return nil
}
