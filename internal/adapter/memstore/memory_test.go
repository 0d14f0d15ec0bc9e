package memstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coderag/internal/adapter/store"
	"coderag/internal/domain"
	"coderag/internal/port"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.CollectionInfo(ctx, "code")
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)

	require.NoError(t, s.CreateCollection(ctx, "code", 2, port.DistanceCosine))
	require.NoError(t, s.Upsert(ctx, "code", []port.VectorItem{
		{ID: "1", Vector: []float32{1, 0}, Text: "x", Metadata: domain.ChunkMetadata{FilePath: "x.py"}},
		{ID: "2", Vector: []float32{0, 1}, Text: "y", Metadata: domain.ChunkMetadata{FilePath: "y.py"}},
	}))

	info, err := s.CollectionInfo(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, 2, info.Points)
	assert.Equal(t, []string{"1", "2"}, s.IDs("code"))

	results, err := s.Search(ctx, "code", []float32{0, 2}, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "y.py", results[0].Metadata.FilePath)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)

	assert.Error(t, s.Upsert(ctx, "code", []port.VectorItem{{ID: "3", Vector: []float32{1}}}))
	require.NoError(t, s.DeleteCollection(ctx, "code"))
	_, err = s.Count(ctx, "code")
	assert.ErrorIs(t, err, store.ErrCollectionNotFound)
}
