package match

import (
	"strings"
)

// NormalizeIdent normalizes an identifier for fuzzy matching: it is
// case-folded to lower and separators (_, -, spaces) are dropped, so
// "ContentLength", "content_length" and "contentLength" are equal.
func NormalizeIdent(s string) string {
	var b strings.Builder

	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		if !isSeparator(r) {
			b.WriteRune(r)
		}
	}

	return b.String()
}

// NormalizeIdentWithAffixStrip normalizes and strips accessor prefixes and
// common suffixes, so that "GetLength", "SetLength" and "length" all
// collapse to "length".
func NormalizeIdentWithAffixStrip(s string) string {
	normalized := NormalizeIdent(s)

	// Accessor prefixes (only when the remainder is still a word)
	for _, prefix := range []string{"get", "set", "is", "has"} {
		if strings.HasPrefix(normalized, prefix) && len(normalized) > len(prefix)+1 {
			normalized = strings.TrimPrefix(normalized, prefix)

			break
		}
	}

	// Common suffixes of func-typed members
	for _, suffix := range []string{"func", "fn"} {
		if strings.HasSuffix(normalized, suffix) && len(normalized) > len(suffix) {
			normalized = strings.TrimSuffix(normalized, suffix)

			break
		}
	}

	return normalized
}

// isSeparator returns true if the rune is a common separator.
func isSeparator(r rune) bool {
	return r == '_' || r == '-' || r == ' '
}
