package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestOpenAIEmbedderBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header: got %q", got)
		}
		var req embeddingsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		// Return vectors out of order to check index sorting.
		resp := map[string]interface{}{
			"data": []map[string]interface{}{
				{"index": 1, "embedding": []float32{0.3, 0.4}},
				{"index": 0, "embedding": []float32{0.1, 0.2}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e, err := NewOpenAIEmbedder(OpenAIConfig{BaseURL: srv.URL, APIKey: "test-key", Model: "m", Dimensions: 2})
	if err != nil {
		t.Fatal(err)
	}
	vectors, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("EmbedBatch: %v", err)
	}
	if len(vectors) != 2 {
		t.Fatalf("got %d vectors", len(vectors))
	}
	if vectors[0][0] != 0.1 || vectors[1][0] != 0.3 {
		t.Errorf("vectors not in input order: %v", vectors)
	}
}

func TestOpenAIEmbedderDimensionMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"data": []map[string]interface{}{{"index": 0, "embedding": []float32{0.1}}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e, _ := NewOpenAIEmbedder(OpenAIConfig{BaseURL: srv.URL, Model: "m", Dimensions: 4})
	if _, err := e.Embed(context.Background(), "a"); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestOpenAIEmbedderRetriesServerError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 2 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		resp := map[string]interface{}{
			"data": []map[string]interface{}{{"index": 0, "embedding": []float32{0.1, 0.2}}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e, _ := NewOpenAIEmbedder(OpenAIConfig{BaseURL: srv.URL, Model: "m", Dimensions: 2, Timeout: 5 * time.Second})
	vec, err := e.Embed(context.Background(), "a")
	if err != nil {
		t.Fatalf("Embed after retry: %v", err)
	}
	if len(vec) != 2 {
		t.Errorf("got %d dims", len(vec))
	}
	if calls < 2 {
		t.Errorf("expected a retry, got %d calls", calls)
	}
}

func TestOpenAIEmbedderEmptyInput(t *testing.T) {
	e, _ := NewOpenAIEmbedder(OpenAIConfig{BaseURL: "http://unused", Model: "m", Dimensions: 2})
	vectors, err := e.EmbedBatch(context.Background(), nil)
	if err != nil {
		t.Fatalf("EmbedBatch(nil): %v", err)
	}
	if vectors != nil {
		t.Errorf("expected nil, got %v", vectors)
	}
}

func TestMockEmbedderDeterministic(t *testing.T) {
	e := NewMockEmbedder(8)
	a, _ := e.Embed(context.Background(), "same text")
	b, _ := e.Embed(context.Background(), "same text")
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("embeddings differ at %d", i)
		}
	}
	if e.Dimensions() != 8 {
		t.Errorf("Dimensions: got %d", e.Dimensions())
	}
}
