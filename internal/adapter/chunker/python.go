package chunker

import (
	"regexp"
	"strings"
)

var (
	pyClassHeader = regexp.MustCompile(`class\s+\w+\s*(?:\([^)]*\))?\s*:`)
	pyFuncHeader  = regexp.MustCompile(`def\s+\w+\s*\([^)]*\)\s*(?:->.*?)?\s*:`)
)

// segmentPython extracts classes, then functions left over once class text is
// removed, then gathers what remains at module level into one segment.
func segmentPython(content string) []string {
	var segments []string
	work := content

	for _, class := range indentBlocks(pyClassHeader, content) {
		segments = append(segments, class)
		work = strings.ReplaceAll(work, class, "")
	}

	for _, fn := range indentBlocks(pyFuncHeader, work) {
		segments = append(segments, fn)
		work = strings.ReplaceAll(work, fn, "")
	}

	if residue := moduleLevel(work); residue != "" {
		segments = append(segments, residue)
	}
	return segments
}

// moduleLevel keeps every line from the first unindented, non-blank line on.
func moduleLevel(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" && !strings.HasPrefix(line, " ") {
			kept = append(kept, line)
		} else if len(kept) > 0 {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
