// Package embedding provides text embedding via an OpenAI-compatible API.
package embedding

import "context"

// Embedder produces vector embeddings for text. Query-time and index-time
// embeddings must come from the same Embedder so they share an embedding space.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
