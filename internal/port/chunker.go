package port

import "coderag/internal/domain"

// Segmenter splits file content into logical units. It never fails.
type Segmenter interface {
	Segment(content string, family domain.Family) []string
	SegmentUnit(unit domain.SourceUnit) []domain.Segment
}
