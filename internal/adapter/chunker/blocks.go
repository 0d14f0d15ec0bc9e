package chunker

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// braceBlocks scans text left to right for header matches. Each block runs
// from the header to the first '}' that starts a line, inclusive. Nested
// braces are not counted, so an inner '}' in column zero ends the block early.
func braceBlocks(header *regexp.Regexp, text string) []Span {
	var spans []Span
	pos := 0
	for pos < len(text) {
		loc := header.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, headerEnd := pos+loc[0], pos+loc[1]

		end := closingBraceLine(text, headerEnd)
		if end < 0 {
			// No column-zero brace remains, so no later header can close either.
			break
		}
		spans = append(spans, Span{Start: start, End: end})
		pos = end
	}
	return spans
}

// closingBraceLine returns the offset just past the first '}' at or after
// from that sits at the start of a line, or -1.
func closingBraceLine(text string, from int) int {
	if from > 0 && from < len(text) && text[from] == '}' && text[from-1] == '\n' {
		return from + 1
	}
	j := strings.Index(text[from:], "\n}")
	if j < 0 {
		return -1
	}
	return from + j + 2
}

// indentBlocks scans text left to right for header matches. Each block ends
// right before the next line that starts with a non-space character, or at
// the end of text (a single trailing newline is left out).
func indentBlocks(header *regexp.Regexp, text string) []string {
	var blocks []string
	pos := 0
	for pos < len(text) {
		loc := header.FindStringIndex(text[pos:])
		if loc == nil {
			break
		}
		start, headerEnd := pos+loc[0], pos+loc[1]
		end := indentedBodyEnd(text, headerEnd)
		blocks = append(blocks, text[start:end])
		pos = end
	}
	return blocks
}

func indentedBodyEnd(text string, from int) int {
	for p := from; p < len(text); p++ {
		if text[p] != '\n' {
			continue
		}
		if p == len(text)-1 {
			return p
		}
		r, _ := utf8.DecodeRuneInString(text[p+1:])
		if !unicode.IsSpace(r) {
			return p
		}
	}
	return len(text)
}
