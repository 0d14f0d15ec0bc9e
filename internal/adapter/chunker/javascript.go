package chunker

import "regexp"

var (
	jsClassHeader = regexp.MustCompile(`class\s+\w+(?:\s+extends\s+\w+)?\s*\{`)

	// Tried in order inside every uncovered range. An exported function
	// matches both the first and the last shape and is kept twice.
	jsFuncHeaders = []*regexp.Regexp{
		regexp.MustCompile(`function\s+\w+\s*\([^)]*\)\s*\{`),
		regexp.MustCompile(`const\s+\w+\s*=\s*(?:async\s*)?\([^)]*\)\s*=>\s*\{`),
		regexp.MustCompile(`let\s+\w+\s*=\s*(?:async\s*)?\([^)]*\)\s*=>\s*\{`),
		regexp.MustCompile(`var\s+\w+\s*=\s*(?:async\s*)?\([^)]*\)\s*=>\s*\{`),
		regexp.MustCompile(`export\s+(?:default\s+)?function\s+\w+\s*\([^)]*\)\s*\{`),
	}

	jsImport = regexp.MustCompile(`import\s+.*?;|require\(.*?\)`)
)

func segmentJavaScript(content string) []string {
	return segmentBraced(content, jsClassHeader, jsFuncHeaders, jsImport)
}
