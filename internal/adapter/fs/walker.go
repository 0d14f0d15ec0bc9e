package fs

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"coderag/internal/adapter/chunker"
	"coderag/internal/domain"
	"coderag/internal/port"
)

var _ port.FileWalker = (*Walker)(nil)

// Walker enumerates source files under a root and turns each into segments.
type Walker struct {
	includes     []string
	excludedDirs []string
	segmenter    port.Segmenter
	logger       *zap.Logger
}

// NewWalker builds a walker that accepts files ending in one of extensions
// and rejects any path whose root-relative form contains one of excludedDirs.
func NewWalker(extensions, excludedDirs []string, segmenter port.Segmenter, logger *zap.Logger) *Walker {
	includes := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		includes = append(includes, "**/*"+ext)
	}
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	if segmenter == nil {
		segmenter = chunker.NewSegmenter(chunker.DefaultMaxLines)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{
		includes:     includes,
		excludedDirs: excludedDirs,
		segmenter:    segmenter,
		logger:       logger,
	}
}

// Walk lists matching files in lexical order.
func (w *Walker) Walk(root string) ([]port.FileInfo, error) {
	var files []port.FileInfo

	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); err != nil {
		return nil, err
	}

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			w.logger.Warn("skipping unreadable path", zap.String("path", path), zap.Error(err))
			if info != nil && info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if relPath != "." && w.shouldExclude(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if w.shouldInclude(relPath) && !w.shouldExclude(relPath) {
			files = append(files, port.FileInfo{
				Path:    path,
				RelPath: relPath,
				ModTime: info.ModTime().Unix(),
				Size:    info.Size(),
			})
		}

		return nil
	})

	return files, err
}

// Visit walks root, segments every matching file and hands each segment to
// visit in per-file ordinal order. A file that cannot be read is logged and
// skipped. An error from visit or ctx stops the walk.
func (w *Walker) Visit(ctx context.Context, root string, visit port.SegmentVisitor) (port.WalkStats, error) {
	var stats port.WalkStats

	files, err := w.Walk(root)
	if err != nil {
		return stats, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return stats, err
	}
	repoName := filepath.Base(abs)

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		content, err := ReadFile(f.Path)
		if err != nil {
			stats.Failed++
			w.logger.Error("error processing file", zap.String("path", f.Path), zap.Error(err))
			continue
		}
		stats.Files++

		unit := domain.SourceUnit{
			Path:     f.RelPath,
			Language: chunker.LanguageTag(f.RelPath),
			Content:  content,
		}
		for _, seg := range w.segmenter.SegmentUnit(unit) {
			meta := domain.ChunkMetadata{
				FilePath: f.RelPath,
				RepoName: repoName,
				ChunkID:  seg.Ordinal,
				Language: unit.Language,
			}
			if err := visit(seg, meta); err != nil {
				return stats, err
			}
			stats.Segments++
		}
	}

	return stats, nil
}

func (w *Walker) shouldInclude(path string) bool {
	for _, pattern := range w.includes {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// shouldExclude is a plain substring test, so "build" also rejects "rebuild/".
func (w *Walker) shouldExclude(path string) bool {
	for _, dir := range w.excludedDirs {
		if dir != "" && strings.Contains(path, dir) {
			return true
		}
	}
	return false
}

// ReadFile returns the file as text with undecodable bytes dropped.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(data), ""), nil
}
