// Package collate builds comparison keys for names that must be unique
// regardless of letter case and accents ("Todo", "TODO" and "tödo" collide).
package collate

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key returns the folded form of s used for uniqueness checks.
func Key(s string) string {
	stripped, _, err := transform.String(transform.Chain(
		norm.NFD,
		runes.Remove(runes.In(unicode.Mn)),
		norm.NFC,
	), s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(strings.TrimSpace(stripped))
}

// Equal reports whether a and b collide under Key.
func Equal(a, b string) bool {
	return Key(a) == Key(b)
}
