package port

import (
	"context"

	"coderag/internal/domain"
)

// Embedder generates vector embeddings for text.
type Embedder interface {
	// Embed generates embeddings for the given texts.
	// Returns a slice of vectors, one per input text.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// ModelName returns the name of the embedding model.
	ModelName() string
}

type Distance string

const (
	DistanceCosine Distance = "cosine"
	DistanceDot    Distance = "dot"
	DistanceEuclid Distance = "euclid"
)

// CollectionInfo describes the vector layout of an existing collection.
type CollectionInfo struct {
	Name      string
	Dimension int
	Distance  Distance
	Points    int
}

// VectorStore stores and searches embedding vectors grouped in named collections.
type VectorStore interface {
	ListCollections(ctx context.Context) ([]string, error)

	// CollectionInfo returns ErrCollectionNotFound (store package) when absent.
	CollectionInfo(ctx context.Context, name string) (CollectionInfo, error)

	CreateCollection(ctx context.Context, name string, dimension int, distance Distance) error

	DeleteCollection(ctx context.Context, name string) error

	// Upsert adds or replaces points by ID.
	Upsert(ctx context.Context, collection string, items []VectorItem) error

	// Search finds the k nearest vectors to the query.
	Search(ctx context.Context, collection string, query []float32, k int) ([]VectorResult, error)

	// Count returns the number of points in the collection.
	Count(ctx context.Context, collection string) (int, error)

	Close() error
}

// VectorItem represents a vector to be stored.
type VectorItem struct {
	ID       string // decimal for numeric ids, otherwise a UUID
	Vector   []float32
	Text     string
	Metadata domain.ChunkMetadata
}

// VectorResult represents a search result.
type VectorResult struct {
	ID       string
	Score    float64 // higher is better
	Text     string
	Metadata domain.ChunkMetadata
}
