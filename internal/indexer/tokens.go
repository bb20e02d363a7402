package indexer

import (
	"strings"
	"unicode/utf8"
)

// TokenCounter estimates how many model tokens a text occupies. Chunk sizing
// only needs a consistent estimate, not the exact tokenizer of any one model.
type TokenCounter interface {
	Count(text string) int
}

// ApproxTokenCounter estimates tokens at roughly four characters per token,
// counted per word so punctuation-heavy text is not undercounted.
type ApproxTokenCounter struct{}

// Count returns the estimated token count for text.
func (ApproxTokenCounter) Count(text string) int {
	total := 0
	for _, word := range strings.Fields(text) {
		n := (utf8.RuneCountInString(word) + 3) / 4
		if n < 1 {
			n = 1
		}
		total += n
	}
	return total
}
