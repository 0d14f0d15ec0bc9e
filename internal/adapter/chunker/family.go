package chunker

import (
	"path/filepath"
	"strings"

	"coderag/internal/domain"
)

var familyByExt = map[string]domain.Family{
	".py":   domain.FamilyPython,
	".java": domain.FamilyCStyle,
	".cs":   domain.FamilyCStyle,
	".cpp":  domain.FamilyCStyle,
	".c":    domain.FamilyCStyle,
	".h":    domain.FamilyCStyle,
	".js":   domain.FamilyJavaScript,
	".ts":   domain.FamilyJavaScript,
}

// FamilyForPath maps a file extension, case-insensitively, to its family.
func FamilyForPath(path string) domain.Family {
	if f, ok := familyByExt[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return domain.FamilyOther
}

// LanguageTag is the extension without its dot, as stored in chunk metadata.
func LanguageTag(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}
