package vectorstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// ChromaStore is a minimal REST client for a Chroma server. The collection is
// created on first use (get_or_create) and its ID cached for the process lifetime.
type ChromaStore struct {
	url        string
	collection string
	client     *http.Client

	mu           sync.Mutex
	collectionID string
}

// ChromaConfig contains connection details for a Chroma vector store.
type ChromaConfig struct {
	URL        string
	Collection string
	Timeout    time.Duration
}

// NewChromaStore creates a Chroma client. No connection is attempted until the
// first operation, so the server may come up after this process.
func NewChromaStore(cfg ChromaConfig) *ChromaStore {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &ChromaStore{
		url:        cfg.URL,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
	}
}

// ensureCollection resolves (creating if missing) the collection and returns its ID.
func (s *ChromaStore) ensureCollection(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collectionID != "" {
		return s.collectionID, nil
	}
	var resp struct {
		ID string `json:"id"`
	}
	body := map[string]interface{}{
		"name":          s.collection,
		"get_or_create": true,
	}
	if err := s.postJSON(ctx, s.url+"/api/v1/collections", body, &resp); err != nil {
		return "", fmt.Errorf("ensure collection %q: %w", s.collection, err)
	}
	if resp.ID == "" {
		return "", fmt.Errorf("ensure collection %q: empty collection id", s.collection)
	}
	s.collectionID = resp.ID
	return s.collectionID, nil
}

// Upsert writes ids, metadatas, documents, and embeddings in one call.
// Entries with already-known IDs are overwritten.
func (s *ChromaStore) Upsert(ctx context.Context, ids []string, metadatas []map[string]interface{}, documents []string, embeddings [][]float32) error {
	if len(ids) == 0 {
		return nil
	}
	if len(metadatas) != len(ids) || len(documents) != len(ids) || len(embeddings) != len(ids) {
		return fmt.Errorf("upsert length mismatch: %d ids, %d metadatas, %d documents, %d embeddings",
			len(ids), len(metadatas), len(documents), len(embeddings))
	}
	collID, err := s.ensureCollection(ctx)
	if err != nil {
		return err
	}
	body := map[string]interface{}{
		"ids":        ids,
		"metadatas":  metadatas,
		"documents":  documents,
		"embeddings": embeddings,
	}
	return s.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections/%s/upsert", s.url, collID), body, nil)
}

// Query returns up to k nearest neighbors ordered by increasing distance.
func (s *ChromaStore) Query(ctx context.Context, embedding []float32, k int) ([]*Hit, error) {
	collID, err := s.ensureCollection(ctx)
	if err != nil {
		return nil, err
	}
	body := map[string]interface{}{
		"query_embeddings": [][]float32{embedding},
		"n_results":        k,
		"include":          []string{"documents", "metadatas", "distances"},
	}
	var resp struct {
		IDs       [][]string                 `json:"ids"`
		Documents [][]string                 `json:"documents"`
		Metadatas [][]map[string]interface{} `json:"metadatas"`
		Distances [][]float64                `json:"distances"`
	}
	if err := s.postJSON(ctx, fmt.Sprintf("%s/api/v1/collections/%s/query", s.url, collID), body, &resp); err != nil {
		return nil, err
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}
	hits := make([]*Hit, 0, len(resp.IDs[0]))
	for i, id := range resp.IDs[0] {
		hit := &Hit{ID: id}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			hit.Document = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			hit.Metadata = resp.Metadatas[0][i]
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			hit.Distance = resp.Distances[0][i]
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Count returns the number of entries in the collection.
func (s *ChromaStore) Count(ctx context.Context) (int, error) {
	collID, err := s.ensureCollection(ctx)
	if err != nil {
		return 0, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v1/collections/%s/count", s.url, collID), nil)
	if err != nil {
		return 0, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("chroma count returned %d: %s", resp.StatusCode, string(b))
	}
	var count int
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		return 0, fmt.Errorf("decode count: %w", err)
	}
	return count, nil
}

// Close is a no-op; the store is remote.
func (s *ChromaStore) Close() error {
	return nil
}

func (s *ChromaStore) postJSON(ctx context.Context, url string, body interface{}, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chroma POST %s failed: %s: %s", url, resp.Status, string(b))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
