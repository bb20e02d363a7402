// Package models defines core data structures for chunks, sources, and QA history.
package models

import (
	"fmt"
	"time"
)

// Chunk is a token-bounded contiguous span of one document's sanitized text,
// the unit of embedding and retrieval.
type Chunk struct {
	// Title is the owning document's name (its source filename).
	Title string `json:"title"`
	// Index is the zero-based position of the chunk within its document.
	Index int `json:"index"`
	// Text is the chunk's sanitized content.
	Text string `json:"text"`
}

// ID returns the deterministic chunk identifier, "title_index". Re-indexing an
// unchanged document produces the same IDs, so the vector store overwrites
// instead of duplicating.
func (c *Chunk) ID() string {
	return fmt.Sprintf("%s_%d", c.Title, c.Index)
}

// Metadata returns the chunk metadata stored alongside its embedding.
func (c *Chunk) Metadata() map[string]interface{} {
	return map[string]interface{}{
		"title":    c.Title,
		"chunk_id": c.Index,
	}
}

// Source is a retrieval hit exposed to callers: a chunk's title and text,
// without further provenance.
type Source struct {
	Title string `json:"title"`
	Chunk string `json:"chunk"`
}

// QAHistoryEntry is an immutable record of one answered question.
type QAHistoryEntry struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	Sources   []Source  `json:"sources"`
	CreatedAt time.Time `json:"created_at"`
}

// AskRequest is the body of POST /ask.
type AskRequest struct {
	Question string `json:"question"`
	// K overrides the configured number of sources to retrieve when positive.
	K int `json:"k,omitempty"`
}

// AskResponse is the response of POST /ask.
type AskResponse struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}

// UploadResponse is the response of POST /upload.
type UploadResponse struct {
	Status   string `json:"status"`
	Filename string `json:"filename"`
}
