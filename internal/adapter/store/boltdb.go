package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"go.etcd.io/bbolt"

	"coderag/internal/port"
)

// ErrCollectionNotFound is returned for operations on a missing collection.
var ErrCollectionNotFound = errors.New("collection not found")

const collectionPrefix = "c/"

var (
	bucketMeta   = []byte("meta")
	bucketPoints = []byte("points")
	keyDimension = []byte("dimension")
	keyDistance  = []byte("distance")
)

// BoltStore keeps named vector collections in a single bbolt file. Each
// collection is a top-level bucket with a meta and a points sub-bucket.
// Points are mirrored in memory per collection for brute-force search.
type BoltStore struct {
	db *bbolt.DB

	mu    sync.Mutex
	cache map[string]*collectionCache
}

type collectionCache struct {
	dimension int
	distance  port.Distance
	points    map[string]storedPoint
}

type storedPoint struct {
	Vector   []float32     `json:"v"`
	Text     string        `json:"t"`
	Metadata pointMetadata `json:"m"`
}

type pointMetadata struct {
	FilePath string `json:"file_path"`
	RepoName string `json:"repo_name"`
	ChunkID  int    `json:"chunk_id"`
	Language string `json:"language"`
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	s := &BoltStore{db: db, cache: make(map[string]*collectionCache)}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func bucketName(collection string) []byte {
	return []byte(collectionPrefix + collection)
}

func (s *BoltStore) ListCollections(_ context.Context) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bbolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bbolt.Bucket) error {
			if n, ok := strings.CutPrefix(string(name), collectionPrefix); ok {
				names = append(names, n)
			}
			return nil
		})
	})
	sort.Strings(names)
	return names, err
}

func (s *BoltStore) CollectionInfo(_ context.Context, name string) (port.CollectionInfo, error) {
	info := port.CollectionInfo{Name: name}
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName(name))
		if b == nil {
			return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
		}
		meta := b.Bucket(bucketMeta)
		if meta == nil {
			return fmt.Errorf("collection %s has no metadata", name)
		}
		dim, err := strconv.Atoi(string(meta.Get(keyDimension)))
		if err != nil {
			return fmt.Errorf("collection %s: bad dimension: %w", name, err)
		}
		info.Dimension = dim
		info.Distance = port.Distance(meta.Get(keyDistance))
		if points := b.Bucket(bucketPoints); points != nil {
			info.Points = points.Stats().KeyN
		}
		return nil
	})
	return info, err
}

func (s *BoltStore) CreateCollection(_ context.Context, name string, dimension int, distance port.Distance) error {
	if dimension <= 0 {
		return fmt.Errorf("invalid dimension %d", dimension)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucket(bucketName(name))
		if err != nil {
			return fmt.Errorf("create collection %s: %w", name, err)
		}
		meta, err := b.CreateBucket(bucketMeta)
		if err != nil {
			return err
		}
		if err := meta.Put(keyDimension, []byte(strconv.Itoa(dimension))); err != nil {
			return err
		}
		if err := meta.Put(keyDistance, []byte(distance)); err != nil {
			return err
		}
		_, err = b.CreateBucket(bucketPoints)
		return err
	})
	if err != nil {
		return err
	}
	s.cache[name] = &collectionCache{dimension: dimension, distance: distance, points: make(map[string]storedPoint)}
	return nil
}

func (s *BoltStore) DeleteCollection(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketName(name)); err != nil {
			if errors.Is(err, bbolt.ErrBucketNotFound) {
				return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
			}
			return err
		}
		return nil
	})
	delete(s.cache, name)
	return err
}

// loadCollection fills the in-memory mirror of a collection on first use.
// Callers hold s.mu for writing.
func (s *BoltStore) loadCollection(name string) (*collectionCache, error) {
	if c, ok := s.cache[name]; ok {
		return c, nil
	}

	c := &collectionCache{points: make(map[string]storedPoint)}
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketName(name))
		if b == nil {
			return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
		}
		meta := b.Bucket(bucketMeta)
		if meta == nil {
			return fmt.Errorf("collection %s has no metadata", name)
		}
		dim, err := strconv.Atoi(string(meta.Get(keyDimension)))
		if err != nil {
			return fmt.Errorf("collection %s: bad dimension: %w", name, err)
		}
		c.dimension = dim
		c.distance = port.Distance(meta.Get(keyDistance))

		points := b.Bucket(bucketPoints)
		if points == nil {
			return nil
		}
		return points.ForEach(func(k, v []byte) error {
			var p storedPoint
			if err := json.Unmarshal(v, &p); err != nil {
				return nil // skip corrupted entries
			}
			c.points[string(k)] = p
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	s.cache[name] = c
	return c, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
