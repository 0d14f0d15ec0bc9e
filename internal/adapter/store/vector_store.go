package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"go.etcd.io/bbolt"

	"coderag/internal/domain"
	"coderag/internal/port"
)

// Upsert adds or replaces points in the collection.
func (s *BoltStore) Upsert(_ context.Context, collection string, items []port.VectorItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.loadCollection(collection)
	if err != nil {
		return err
	}
	for _, item := range items {
		if len(item.Vector) != c.dimension {
			return fmt.Errorf("vector dimension mismatch: expected %d, got %d", c.dimension, len(item.Vector))
		}
	}

	staged := make(map[string]storedPoint, len(items))
	err = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName(collection))
		if b == nil {
			return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
		}
		points := b.Bucket(bucketPoints)

		for _, item := range items {
			p := storedPoint{
				Vector:   item.Vector,
				Text:     item.Text,
				Metadata: pointMetadata(item.Metadata),
			}
			data, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if err := points.Put([]byte(item.ID), data); err != nil {
				return err
			}
			staged[item.ID] = p
		}
		return nil
	})
	if err != nil {
		return err
	}

	for id, p := range staged {
		c.points[id] = p
	}
	return nil
}

// Search scores every point in the collection and returns the best k.
func (s *BoltStore) Search(_ context.Context, collection string, query []float32, k int) ([]port.VectorResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.loadCollection(collection)
	if err != nil {
		return nil, err
	}
	if len(query) != c.dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", c.dimension, len(query))
	}

	results := make([]port.VectorResult, 0, len(c.points))
	for id, p := range c.points {
		results = append(results, port.VectorResult{
			ID:       id,
			Score:    Score(c.distance, query, p.Vector),
			Text:     p.Text,
			Metadata: domain.ChunkMetadata(p.Metadata),
		})
	}
	return TopK(results, k), nil
}

// Count returns the number of points in the collection.
func (s *BoltStore) Count(_ context.Context, collection string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.loadCollection(collection)
	if err != nil {
		return 0, err
	}
	return len(c.points), nil
}

// TopK sorts results by descending score, breaking ties by ID, and keeps k.
func TopK(results []port.VectorResult, k int) []port.VectorResult {
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if k < 0 {
		k = 0
	}
	if k > len(results) {
		k = len(results)
	}
	return results[:k]
}

// Score maps a distance metric onto a higher-is-better similarity.
func Score(distance port.Distance, a, b []float32) float64 {
	switch distance {
	case port.DistanceDot:
		return dotProduct(a, b)
	case port.DistanceEuclid:
		return -euclidean(a, b)
	default:
		return CosineSimilarity(a, b)
	}
}

// CosineSimilarity returns 0 when either vector has zero length.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func dotProduct(a, b []float32) float64 {
	var dot float64
	for i := range a {
		if i >= len(b) {
			break
		}
		dot += float64(a[i]) * float64(b[i])
	}
	return dot
}

func euclidean(a, b []float32) float64 {
	var sum float64
	for i := range a {
		if i >= len(b) {
			break
		}
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
