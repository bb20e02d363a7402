// Package vectorstore defines the vector store contract and its implementations.
package vectorstore

import "context"

// Hit is one nearest-neighbor result returned by Query, ordered by increasing
// distance from the query embedding.
type Hit struct {
	ID       string
	Metadata map[string]interface{}
	Document string
	Distance float64
}

// VectorStore supports upsert-by-id and nearest-neighbor similarity query over
// embeddings. Upsert overwrites existing entries with the same ID, and is the
// sole externally visible state transition of an indexing run.
type VectorStore interface {
	Upsert(ctx context.Context, ids []string, metadatas []map[string]interface{}, documents []string, embeddings [][]float32) error
	Query(ctx context.Context, embedding []float32, k int) ([]*Hit, error)
	Count(ctx context.Context) (int, error)
	Close() error
}
