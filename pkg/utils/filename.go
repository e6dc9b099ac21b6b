package utils

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// SanitizeFilename replaces every rune outside [A-Za-z0-9._-] with '_'.
// The result has the same rune count as name.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if isSafeRune(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func isSafeRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '.', r == '_', r == '-':
		return true
	}
	return false
}

// DetectContentType labels an object for storage. Only the extension and the
// first 512 bytes are consulted; nothing is rejected.
func DetectContentType(filename string, head []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	if len(head) > 0 {
		return http.DetectContentType(head)
	}
	return "application/octet-stream"
}
