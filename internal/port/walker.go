package port

import (
	"context"

	"coderag/internal/domain"
)

type FileWalker interface {
	Walk(root string) ([]FileInfo, error)
	Visit(ctx context.Context, root string, visit SegmentVisitor) (WalkStats, error)
}

type FileInfo struct {
	Path    string
	RelPath string
	ModTime int64
	Size    int64
}

// WalkStats summarizes one Visit call.
type WalkStats struct {
	Files    int
	Failed   int
	Segments int
}

// SegmentVisitor receives each produced segment with its metadata, in
// per-file ordinal order.
type SegmentVisitor func(seg domain.Segment, meta domain.ChunkMetadata) error
