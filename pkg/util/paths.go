package util

import (
	"path/filepath"
	"strings"
)

// SafeFilePath cleans a relative file path and reports whether it is safe to
// use. It rejects empty paths, absolute paths, backslashes, and any path that
// still escapes upward after filepath.Clean.
func SafeFilePath(path string) (string, bool) {
	return safePath(path, false)
}

// SafeFilePathAllowAbsolute is SafeFilePath for call sites where absolute
// paths are acceptable. Upward traversal that survives cleaning is still
// rejected.
func SafeFilePathAllowAbsolute(path string) (string, bool) {
	return safePath(path, true)
}

func safePath(path string, allowAbsolute bool) (string, bool) {
	if path == "" || strings.ContainsRune(path, '\\') {
		return "", false
	}

	cleaned := filepath.Clean(path)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	if !allowAbsolute && filepath.IsAbs(cleaned) {
		return "", false
	}
	return cleaned, true
}
