package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coderag/internal/adapter/embedding"
	"coderag/internal/adapter/store"
	"coderag/internal/domain"
	"coderag/internal/port"
)

// ErrDimensionMismatch is returned when the collection's vector size differs
// from the embedder's and recreation is disabled.
var ErrDimensionMismatch = errors.New("collection dimension does not match embedding dimension")

const DefaultBatchSize = 32

// IndexOptions controls collection handling and point ids.
type IndexOptions struct {
	Collection          string
	BatchSize           int
	RecreateOnMismatch  bool
	ContentAddressedIDs bool
}

// IndexUseCase walks repositories, embeds their segments in batches and
// upserts them into the vector store.
type IndexUseCase struct {
	store    port.VectorStore
	embedder port.Embedder
	walker   port.FileWalker
	opts     IndexOptions
	logger   *zap.Logger
}

// NewIndexUseCase creates a new index use case.
func NewIndexUseCase(
	vectors port.VectorStore,
	embedder port.Embedder,
	walker port.FileWalker,
	opts IndexOptions,
	logger *zap.Logger,
) *IndexUseCase {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IndexUseCase{
		store:    vectors,
		embedder: embedder,
		walker:   walker,
		opts:     opts,
		logger:   logger,
	}
}

// IndexResult contains the results of an indexing operation.
type IndexResult struct {
	Dimension     int
	Recreated     bool
	Files         int
	FilesFailed   int
	Segments      int
	Indexed       int
	BatchesFailed int
	Errors        []string
}

// ProgressFunc is called after each batch with the running indexed count.
type ProgressFunc func(indexed int)

// EnsureCollection makes the target collection exist with the embedder's
// dimension. It reports the dimension and whether the collection was
// dropped and recreated.
func (u *IndexUseCase) EnsureCollection(ctx context.Context) (int, bool, error) {
	dim, err := embedding.ProbeDimension(ctx, u.embedder)
	if err != nil {
		return 0, false, err
	}
	u.logger.Info("embedding dimension", zap.Int("dimension", dim))

	name := u.opts.Collection
	info, err := u.store.CollectionInfo(ctx, name)
	switch {
	case errors.Is(err, store.ErrCollectionNotFound):
		u.logger.Info("collection does not exist", zap.String("collection", name))
		return dim, false, u.create(ctx, dim)
	case err != nil:
		u.logger.Warn("could not read collection info", zap.String("collection", name), zap.Error(err))
		if !u.opts.RecreateOnMismatch {
			return 0, false, fmt.Errorf("read collection %s: %w", name, err)
		}
	case info.Dimension == dim:
		u.logger.Info("existing collection dimension", zap.Int("dimension", info.Dimension))
		return dim, false, nil
	default:
		u.logger.Warn("dimension mismatch",
			zap.String("collection", name),
			zap.Int("collection_dimension", info.Dimension),
			zap.Int("embedding_dimension", dim),
		)
		if !u.opts.RecreateOnMismatch {
			return 0, false, fmt.Errorf("%w: collection %s has %d, embedder produces %d",
				ErrDimensionMismatch, name, info.Dimension, dim)
		}
	}

	u.logger.Warn("recreating collection", zap.String("collection", name), zap.Int("dimension", dim))
	if err := u.store.DeleteCollection(ctx, name); err != nil && !errors.Is(err, store.ErrCollectionNotFound) {
		u.logger.Error("error deleting collection", zap.String("collection", name), zap.Error(err))
	}
	return dim, true, u.create(ctx, dim)
}

func (u *IndexUseCase) create(ctx context.Context, dim int) error {
	u.logger.Info("creating collection", zap.String("collection", u.opts.Collection), zap.Int("dimension", dim))
	if err := u.store.CreateCollection(ctx, u.opts.Collection, dim, port.DistanceCosine); err != nil {
		return fmt.Errorf("create collection %s: %w", u.opts.Collection, err)
	}
	return nil
}

// Index ensures the collection, then indexes every root in order. Point ids
// continue from the collection's current size unless content-addressed ids
// are enabled. A failed batch is logged and skipped without consuming ids,
// so stored counter ids stay contiguous from 0.
func (u *IndexUseCase) Index(ctx context.Context, roots []string, progress ProgressFunc) (*IndexResult, error) {
	result := &IndexResult{}

	dim, recreated, err := u.EnsureCollection(ctx)
	if err != nil {
		return nil, err
	}
	result.Dimension = dim
	result.Recreated = recreated

	nextID, err := u.store.Count(ctx, u.opts.Collection)
	if err != nil {
		u.logger.Warn("could not count points, ids start at 0", zap.Error(err))
		nextID = 0
	}

	for _, root := range roots {
		u.logger.Info("processing repository", zap.String("repository", root))

		var batch []domain.IndexedChunk
		batchNo := 0
		flush := func() {
			if len(batch) == 0 {
				return
			}
			batchNo++
			n, err := u.indexBatch(ctx, batch, nextID)
			if err != nil {
				result.BatchesFailed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s batch %d: %v", root, batchNo, err))
				u.logger.Error("batch failed", zap.String("repository", root), zap.Int("batch", batchNo), zap.Error(err))
			} else {
				nextID += n
				result.Indexed += n
				u.logger.Info("indexed batch", zap.String("repository", root), zap.Int("batch", batchNo), zap.Int("points", n))
			}
			batch = batch[:0]
			if progress != nil {
				progress(result.Indexed)
			}
		}

		stats, err := u.walker.Visit(ctx, root, func(seg domain.Segment, meta domain.ChunkMetadata) error {
			batch = append(batch, domain.IndexedChunk{Segment: seg, Metadata: meta})
			if len(batch) >= u.opts.BatchSize {
				flush()
			}
			return ctx.Err()
		})
		flush()

		result.Files += stats.Files
		result.FilesFailed += stats.Failed
		result.Segments += stats.Segments

		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return result, ctxErr
			}
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", root, err))
			u.logger.Error("error processing repository", zap.String("repository", root), zap.Error(err))
			continue
		}
		if stats.Segments == 0 {
			u.logger.Warn("no code chunks were extracted", zap.String("repository", root))
		}
	}

	u.logger.Info("indexing complete",
		zap.Int("files", result.Files),
		zap.Int("segments", result.Segments),
		zap.Int("indexed", result.Indexed),
	)
	return result, nil
}

func (u *IndexUseCase) indexBatch(ctx context.Context, batch []domain.IndexedChunk, firstID int) (int, error) {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Segment.Text
	}

	vectors, err := u.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(vectors) != len(batch) {
		return 0, fmt.Errorf("embed: got %d vectors for %d texts", len(vectors), len(batch))
	}

	items := make([]port.VectorItem, len(batch))
	for i := range batch {
		batch[i].EmbeddingID = u.pointID(firstID+i, batch[i])
		items[i] = port.VectorItem{
			ID:       batch[i].EmbeddingID,
			Vector:   vectors[i],
			Text:     batch[i].Segment.Text,
			Metadata: batch[i].Metadata,
		}
	}
	if err := u.store.Upsert(ctx, u.opts.Collection, items); err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}
	return len(items), nil
}

func (u *IndexUseCase) pointID(seq int, c domain.IndexedChunk) string {
	if !u.opts.ContentAddressedIDs {
		return strconv.Itoa(seq)
	}
	return ContentID(c.Metadata, c.Segment.Text)
}

// ContentID is a name-based UUID of a segment's location and text, so the
// same segment always maps to the same point.
func ContentID(meta domain.ChunkMetadata, text string) string {
	name := fmt.Sprintf("%s\x00%s\x00%d\x00%s", meta.RepoName, meta.FilePath, meta.ChunkID, text)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name)).String()
}
