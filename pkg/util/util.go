package util

import (
	"path/filepath"
	"strings"
)

// FileSuffix returns the final extension of the last path element, including the
// leading dot, or "" when there is none.
//
// Unlike filepath.Ext, a name that starts with its only dot (".png") or ends with a
// dot ("archive.") has no suffix.
func FileSuffix(path string) string {
	name := filepath.Base(path)
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}

// NormalizeExtension lower-cases ext and adds a leading dot if missing.
// Surrounding whitespace is trimmed; an empty input stays empty.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || strings.HasPrefix(ext, ".") {
		return ext
	}
	return "." + ext
}

// ResolveDir joins sub onto parent and returns the absolute result. An absolute
// sub replaces parent entirely.
func ResolveDir(parent, sub string) (string, error) {
	if filepath.IsAbs(sub) {
		return filepath.Clean(sub), nil
	}
	return filepath.Abs(filepath.Join(parent, sub))
}
