package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxKeyComponentLen bounds the length of any normalized key component so a
// pathological title cannot produce an unbounded key.
const MaxKeyComponentLen = 120

var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// StripAccents removes diacritics via NFD decomposition. On transform failure
// the input is returned unchanged rather than erroring; a worse key only
// lowers match confidence.
func StripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// Text lowercases, strips accents and punctuation, and collapses whitespace.
// This is the shared normalization used for dedup keys, cancellation-pattern
// matching, and lexicon scoring.
func Text(s string) string {
	s = StripAccents(strings.ToLower(s))

	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		default:
			// punctuation and whitespace both collapse to a single space
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// KeyComponent normalizes a key field and truncates it to MaxKeyComponentLen.
func KeyComponent(s string) string {
	n := Text(s)
	if len(n) > MaxKeyComponentLen {
		n = n[:MaxKeyComponentLen]
	}
	return n
}
