package textmatch

import "strings"

// Normalize canonicalizes a free-text answer for comparison: lower-cases the
// input, replaces every character that is not an ASCII letter, digit, or
// apostrophe with a space, then collapses runs of whitespace into a single
// space and trims the result. It is total and idempotent; empty input yields
// empty output.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '\'':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
