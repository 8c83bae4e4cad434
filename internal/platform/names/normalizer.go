package names

import (
	"strings"
	"unicode"
)

// Normalize canonicalizes a free-text team or player name coming out of
// noisy report extraction: merged words ("ViratKohli"), embedded digits,
// duplicated whitespace. It is total and idempotent, so already-clean names
// pass through unchanged.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw) + 4)

	var prev rune
	for _, r := range raw {
		if unicode.IsDigit(r) {
			continue
		}
		if unicode.IsLower(prev) && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
		prev = r
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// Equal reports whether two raw names canonicalize to the same form.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}
