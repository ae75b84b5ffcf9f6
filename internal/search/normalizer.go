// Package search implements the multi-tier search and ranking engine:
// identity fast path, metadata tier, and the three-tier content fallback.
package search

import (
	"strings"
	"unicode"
)

// NormalizeQuery strips every character that is not a letter, digit, or
// space, collapses whitespace runs, and trims. An empty result means the
// engine answers with an empty result set, not an error.
func NormalizeQuery(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
