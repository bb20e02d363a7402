package indexer

import (
	"fmt"
	"strings"
)

// Chunker splits sanitized text into sentence-aligned chunks bounded by a
// token budget. Sentences are never split; a chunk may exceed maxTokens only
// when a single sentence does.
type Chunker struct {
	counter   TokenCounter
	maxTokens int
	minTokens int
}

// NewChunker returns a Chunker. minTokens must be positive and strictly less
// than maxTokens.
func NewChunker(counter TokenCounter, maxTokens, minTokens int) (*Chunker, error) {
	if minTokens <= 0 || minTokens >= maxTokens {
		return nil, fmt.Errorf("invalid chunk bounds: min %d, max %d", minTokens, maxTokens)
	}
	return &Chunker{counter: counter, maxTokens: maxTokens, minTokens: minTokens}, nil
}

// Chunk splits text into chunks. Empty or whitespace-only text yields no
// chunks. Concatenating the chunks with single spaces reproduces the
// sanitized input.
func (c *Chunker) Chunk(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	current := ""
	for _, sentence := range splitSentences(text) {
		candidate := sentence
		if current != "" {
			candidate = current + " " + sentence
		}
		n := c.counter.Count(candidate)
		switch {
		case n < c.minTokens:
			current = candidate
		case n > c.maxTokens:
			// Adding the sentence would overshoot: flush what we have,
			// even if it is below minTokens, and start over.
			if current != "" {
				chunks = append(chunks, current)
			}
			current = sentence
		default:
			chunks = append(chunks, candidate)
			current = ""
		}
	}
	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}

// splitSentences breaks text after '.', '!' or '?' followed by a space.
// The input is expected to be sanitized, so whitespace runs are single spaces.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		ch := text[i]
		if (ch == '.' || ch == '!' || ch == '?') && text[i+1] == ' ' {
			sentences = append(sentences, text[start:i+1])
			start = i + 2
		}
	}
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}
	return sentences
}
