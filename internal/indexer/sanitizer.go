package indexer

import (
	"strings"
	"unicode"
)

// Sanitize collapses every run of whitespace (spaces, tabs, newlines) into a
// single space and trims leading and trailing whitespace. Running it twice
// yields the same result as running it once.
func Sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	inSpace := false
	for _, r := range text {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
