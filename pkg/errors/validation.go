package errors

import (
	"slices"
	"strings"
	"unicode"
)

// maxTableIDLength bounds identifiers that travel through URLs and cache keys.
const maxTableIDLength = 256

// ValidateTableID validates a process table identifier received from the
// command line, an HTTP path, or a source collaborator.
//
// The rules are conservative because table IDs end up in cache keys, file
// names and database filters:
//   - No empty IDs
//   - No control characters or null bytes
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateTableID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "table id cannot be empty")
	}
	if len(id) > maxTableIDLength {
		return New(ErrCodeInvalidInput, "table id too long (max %d characters)", maxTableIDLength)
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "table id contains invalid control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "table id contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidateURI checks that rawURI is non-empty and uses one of the allowed
// schemes (for example "redis" and "rediss" for cache backends).
func ValidateURI(rawURI string, schemes ...string) error {
	if rawURI == "" {
		return New(ErrCodeInvalidConfig, "URI cannot be empty")
	}
	scheme, _, ok := strings.Cut(rawURI, "://")
	if !ok || !slices.Contains(schemes, scheme) {
		return New(ErrCodeInvalidConfig, "URI must use one of the schemes %v", schemes)
	}
	return nil
}
