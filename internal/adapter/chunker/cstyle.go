package chunker

import (
	"regexp"
	"strings"
)

const cModifiers = `public|private|protected|static|final|native|synchronized|abstract|transient`

var (
	cClassHeader = regexp.MustCompile(
		`(?:public|private|protected)?\s*(?:class|struct|interface)\s+\w+(?:<.*?>)?` +
			`(?:\s+extends\s+\w+(?:<.*?>)?)?(?:\s+implements\s+[\w,\s<>]+)?\s*\{`)
	cMethodHeader = regexp.MustCompile(
		`(?:` + cModifiers + `)(?:\s+(?:` + cModifiers + `))*` +
			`\s+[\w<>\[\]]+\s+\w+\s*\([^)]*\)(?:\s+throws[\w,\s]+)?\s*\{`)
	cImport = regexp.MustCompile(`package\s+[\w.]+;|import\s+[\w.*]+;`)
)

// segmentCStyle handles brace-delimited languages such as Java, C# and C++.
func segmentCStyle(content string) []string {
	return segmentBraced(content, cClassHeader, []*regexp.Regexp{cMethodHeader}, cImport)
}

// segmentBraced runs the two-phase extraction shared by the brace families:
// class blocks first, then function blocks inside the ranges no class
// covers, then one trailing segment of import lines.
func segmentBraced(content string, class *regexp.Regexp, funcs []*regexp.Regexp, imports *regexp.Regexp) []string {
	var segments []string

	classSpans := braceBlocks(class, content)
	for _, s := range classSpans {
		segments = append(segments, content[s.Start:s.End])
	}

	uncovered := NewIntervalList(Span{Start: 0, End: len(content)}).Subtract(classSpans...)
	for _, r := range uncovered {
		section := content[r.Start:r.End]
		for _, pattern := range funcs {
			for _, s := range braceBlocks(pattern, section) {
				segments = append(segments, section[s.Start:s.End])
			}
		}
	}

	if found := imports.FindAllString(content, -1); len(found) > 0 {
		segments = append(segments, strings.Join(found, "\n"))
	}
	return segments
}
