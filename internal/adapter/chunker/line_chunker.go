package chunker

import "strings"

const DefaultMaxLines = 100

// ChunkByLines splits content into windows of at most maxLines lines.
// Windows that are blank after trimming are dropped.
func ChunkByLines(content string, maxLines int) []string {
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	lines := strings.Split(content, "\n")
	var chunks []string
	for start := 0; start < len(lines); start += maxLines {
		end := start + maxLines
		if end > len(lines) {
			end = len(lines)
		}
		chunk := strings.Join(lines[start:end], "\n")
		if strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}
