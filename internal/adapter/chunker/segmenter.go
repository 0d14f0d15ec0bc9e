package chunker

import (
	"strings"

	"coderag/internal/domain"
)

// Segmenter splits source text into structural units per language family,
// falling back to line windows for unknown languages.
type Segmenter struct {
	maxLines int
}

func NewSegmenter(maxLines int) *Segmenter {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}
	return &Segmenter{maxLines: maxLines}
}

// Segment never fails. Empty content yields no segments; any other content
// yields at least one. When structural extraction finds at most one unit the
// whole content comes back as the only segment.
func (s *Segmenter) Segment(content string, family domain.Family) []string {
	if content == "" {
		return nil
	}

	var segments []string
	switch family {
	case domain.FamilyPython:
		segments = segmentPython(content)
	case domain.FamilyCStyle:
		segments = segmentCStyle(content)
	case domain.FamilyJavaScript:
		segments = segmentJavaScript(content)
	default:
		segments = ChunkByLines(content, s.maxLines)
		if len(segments) == 0 {
			return []string{content}
		}
		return segments
	}

	if len(segments) <= 1 {
		return []string{content}
	}
	return s.sweepResidue(content, segments)
}

// SegmentUnit segments one file and numbers the results in order.
func (s *Segmenter) SegmentUnit(unit domain.SourceUnit) []domain.Segment {
	texts := s.Segment(unit.Content, FamilyForPath(unit.Path))
	segments := make([]domain.Segment, len(texts))
	for i, text := range texts {
		segments[i] = domain.Segment{Text: text, Ordinal: i}
	}
	return segments
}

// sweepResidue appends line windows holding every non-blank input line that
// no structural segment contains, so the file is covered at least once.
func (s *Segmenter) sweepResidue(content string, segments []string) []string {
	seen := make(map[string]struct{})
	for _, seg := range segments {
		for _, line := range strings.Split(seg, "\n") {
			if t := strings.TrimSpace(line); t != "" {
				seen[t] = struct{}{}
			}
		}
	}

	var missing []string
	for _, line := range strings.Split(content, "\n") {
		t := strings.TrimSpace(line)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		missing = append(missing, line)
	}
	if len(missing) == 0 {
		return segments
	}
	return append(segments, ChunkByLines(strings.Join(missing, "\n"), s.maxLines)...)
}
