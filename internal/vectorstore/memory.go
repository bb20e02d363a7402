package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// MemoryStore is an in-process VectorStore using brute-force cosine distance.
// Suitable for tests and small corpora without a Chroma server.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	order   []string // insertion order, for stable iteration
}

type memoryEntry struct {
	metadata  map[string]interface{}
	document  string
	embedding []float32
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

// Upsert inserts or overwrites entries by ID.
func (s *MemoryStore) Upsert(ctx context.Context, ids []string, metadatas []map[string]interface{}, documents []string, embeddings [][]float32) error {
	if len(metadatas) != len(ids) || len(documents) != len(ids) || len(embeddings) != len(ids) {
		return fmt.Errorf("upsert length mismatch: %d ids, %d metadatas, %d documents, %d embeddings",
			len(ids), len(metadatas), len(documents), len(embeddings))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, id := range ids {
		vec := make([]float32, len(embeddings[i]))
		copy(vec, embeddings[i])
		if _, exists := s.entries[id]; !exists {
			s.order = append(s.order, id)
		}
		s.entries[id] = &memoryEntry{
			metadata:  metadatas[i],
			document:  documents[i],
			embedding: vec,
		}
	}
	return nil
}

// Query returns up to k entries ordered by increasing cosine distance.
func (s *MemoryStore) Query(ctx context.Context, embedding []float32, k int) ([]*Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if k <= 0 || len(s.order) == 0 {
		return nil, nil
	}
	hits := make([]*Hit, 0, len(s.order))
	for _, id := range s.order {
		e := s.entries[id]
		hits = append(hits, &Hit{
			ID:       id,
			Metadata: e.metadata,
			Document: e.document,
			Distance: cosineDistance(embedding, e.embedding),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if k > len(hits) {
		k = len(hits)
	}
	return hits[:k], nil
}

// Count returns the number of stored entries.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// Close is a no-op for MemoryStore.
func (s *MemoryStore) Close() error {
	return nil
}

// cosineDistance returns 1 - cosine similarity. Zero vectors are treated as
// maximally distant.
func cosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
