package store

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"coderag/internal/domain"
	"coderag/internal/port"
)

func newTestBolt(t *testing.T) (*BoltStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vectors.db")
	s, err := NewBoltStore(path)
	require.NoError(t, err)
	return s, path
}

func item(id string, vec []float32, path string, chunk int) port.VectorItem {
	return port.VectorItem{
		ID:     id,
		Vector: vec,
		Text:   "text " + id,
		Metadata: domain.ChunkMetadata{
			FilePath: path,
			RepoName: "repo",
			ChunkID:  chunk,
			Language: "py",
		},
	}
}

func TestBoltCollectionLifecycle(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestBolt(t)
	defer s.Close()

	_, err := s.CollectionInfo(ctx, "code")
	assert.ErrorIs(t, err, ErrCollectionNotFound)

	require.NoError(t, s.CreateCollection(ctx, "code", 3, port.DistanceCosine))
	assert.Error(t, s.CreateCollection(ctx, "code", 3, port.DistanceCosine))

	info, err := s.CollectionInfo(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, port.CollectionInfo{Name: "code", Dimension: 3, Distance: port.DistanceCosine}, info)

	names, err := s.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"code"}, names)

	require.NoError(t, s.DeleteCollection(ctx, "code"))
	assert.ErrorIs(t, s.DeleteCollection(ctx, "code"), ErrCollectionNotFound)

	names, err = s.ListCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestBoltUpsertSearchCount(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestBolt(t)
	defer s.Close()
	require.NoError(t, s.CreateCollection(ctx, "code", 2, port.DistanceCosine))

	require.NoError(t, s.Upsert(ctx, "code", []port.VectorItem{
		item("0", []float32{1, 0}, "a.py", 0),
		item("1", []float32{0, 1}, "b.py", 0),
		item("2", []float32{1, 1}, "c.py", 3),
	}))

	n, err := s.Count(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	results, err := s.Search(ctx, "code", []float32{1, 0.1}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "0", results[0].ID)
	assert.Equal(t, "2", results[1].ID)
	assert.Equal(t, "text 2", results[1].Text)
	assert.Equal(t, domain.ChunkMetadata{FilePath: "c.py", RepoName: "repo", ChunkID: 3, Language: "py"}, results[1].Metadata)

	require.NoError(t, s.Upsert(ctx, "code", []port.VectorItem{item("1", []float32{1, 0}, "b2.py", 1)}))
	n, err = s.Count(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestBoltRejectsWrongDimension(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestBolt(t)
	defer s.Close()
	require.NoError(t, s.CreateCollection(ctx, "code", 2, port.DistanceCosine))

	assert.Error(t, s.Upsert(ctx, "code", []port.VectorItem{item("0", []float32{1, 2, 3}, "a.py", 0)}))
	_, err := s.Search(ctx, "code", []float32{1}, 1)
	assert.Error(t, err)

	err = s.Upsert(ctx, "missing", []port.VectorItem{item("0", []float32{1, 2}, "a.py", 0)})
	assert.ErrorIs(t, err, ErrCollectionNotFound)
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	s, path := newTestBolt(t)
	require.NoError(t, s.CreateCollection(ctx, "code", 2, port.DistanceDot))
	require.NoError(t, s.Upsert(ctx, "code", []port.VectorItem{item("7", []float32{3, 4}, "a.py", 0)}))
	require.NoError(t, s.Close())

	reopened, err := NewBoltStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	version, err := reopened.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, CurrentSchemaVersion, version)

	info, err := reopened.CollectionInfo(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, 2, info.Dimension)
	assert.Equal(t, port.DistanceDot, info.Distance)
	assert.Equal(t, 1, info.Points)

	results, err := reopened.Search(ctx, "code", []float32{1, 1}, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 7.0, results[0].Score, 1e-9)
}

func TestScoreAndTopK(t *testing.T) {
	assert.InDelta(t, 1.0, CosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.Equal(t, 0.0, CosineSimilarity([]float32{0, 0}, []float32{1, 1}))
	assert.InDelta(t, -5.0, Score(port.DistanceEuclid, []float32{0, 0}, []float32{3, 4}), 1e-9)

	in := []port.VectorResult{{ID: "b", Score: 0.5}, {ID: "a", Score: 0.5}, {ID: "c", Score: 0.9}}
	got := TopK(in, 5)
	assert.Equal(t, []string{"c", "a", "b"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Empty(t, TopK(in, 0))
}

func TestBoltRejectsNewerSchema(t *testing.T) {
	s, path := newTestBolt(t)
	require.NoError(t, s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketSchema).Put(keySchemaVersion, []byte(strconv.Itoa(CurrentSchemaVersion+1)))
	}))
	require.NoError(t, s.Close())

	_, err := NewBoltStore(path)
	assert.ErrorContains(t, err, "newer version")
}
