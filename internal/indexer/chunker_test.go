package indexer

import (
	"strings"
	"testing"
)

// wordCounter counts one token per word, making chunk boundaries easy to
// reason about in tests.
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

func TestChunkerBounds(t *testing.T) {
	if _, err := NewChunker(wordCounter{}, 5, 5); err == nil {
		t.Error("expected error for min == max")
	}
	if _, err := NewChunker(wordCounter{}, 5, 0); err == nil {
		t.Error("expected error for min == 0")
	}
}

func TestChunkerEmpty(t *testing.T) {
	c, err := NewChunker(wordCounter{}, 5, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.Chunk(""); got != nil {
		t.Errorf("empty text: got %v", got)
	}
	if got := c.Chunk("   "); got != nil {
		t.Errorf("whitespace text: got %v", got)
	}
}

func TestChunkerAccumulatesToRange(t *testing.T) {
	c, err := NewChunker(wordCounter{}, 5, 3)
	if err != nil {
		t.Fatal(err)
	}
	got := c.Chunk("One two. Three four. Five six seven. Eight.")
	want := []string{"One two. Three four.", "Five six seven.", "Eight."}
	if len(got) != len(want) {
		t.Fatalf("got %d chunks %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("chunk %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestChunkerFlushesBeforeOvershoot(t *testing.T) {
	c, err := NewChunker(wordCounter{}, 5, 4)
	if err != nil {
		t.Fatal(err)
	}
	// Appending the second sentence would make 6 tokens, over the max, so
	// the undersized first sentence is flushed on its own.
	got := c.Chunk("A b. C d e f.")
	want := []string{"A b.", "C d e f."}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestChunkerKeepsOversizedSentenceWhole(t *testing.T) {
	c, err := NewChunker(wordCounter{}, 4, 3)
	if err != nil {
		t.Fatal(err)
	}
	got := c.Chunk("One two three four five six.")
	if len(got) != 1 || got[0] != "One two three four five six." {
		t.Errorf("oversized sentence must stay whole, got %v", got)
	}
}

func TestChunkerLosesNoText(t *testing.T) {
	c, err := NewChunker(wordCounter{}, 5, 3)
	if err != nil {
		t.Fatal(err)
	}
	in := "One two. Three four! Five six seven? Eight nine ten eleven twelve. End."
	got := c.Chunk(in)
	if joined := strings.Join(got, " "); joined != in {
		t.Errorf("text lost or reordered:\n in: %q\nout: %q", in, joined)
	}
}

func TestChunkerTinyTextSingleChunk(t *testing.T) {
	c, err := NewChunker(ApproxTokenCounter{}, 500, 300)
	if err != nil {
		t.Fatal(err)
	}
	got := c.Chunk("A short note. Nothing more.")
	if len(got) != 1 {
		t.Fatalf("tiny text: got %d chunks, want 1", len(got))
	}
}

func TestApproxTokenCounter(t *testing.T) {
	c := ApproxTokenCounter{}
	if got := c.Count(""); got != 0 {
		t.Errorf("empty: got %d", got)
	}
	if got := c.Count("a b c"); got != 3 {
		t.Errorf("short words: got %d, want 3", got)
	}
	if got := c.Count("abcdefgh"); got != 2 {
		t.Errorf("eight runes: got %d, want 2", got)
	}
}
