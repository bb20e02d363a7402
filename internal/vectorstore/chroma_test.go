package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

// fakeChroma emulates the small slice of the Chroma REST API the client uses.
func fakeChroma(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	upserts := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/collections", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["get_or_create"] != true {
			t.Errorf("expected get_or_create=true, got %v", body)
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"id": "coll-1", "name": body["name"].(string)})
	})
	mux.HandleFunc("/api/v1/collections/coll-1/upsert", func(w http.ResponseWriter, r *http.Request) {
		upserts++
		var body struct {
			IDs []string `json:"ids"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.IDs) == 0 {
			t.Error("upsert with no ids")
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/v1/collections/coll-1/query", func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"ids":       [][]string{{"doc.txt_0", "doc.txt_1"}},
			"documents": [][]string{{"chunk zero", "chunk one"}},
			"metadatas": [][]map[string]interface{}{{{"title": "doc.txt"}, {"title": "doc.txt"}}},
			"distances": [][]float64{{0.1, 0.4}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/v1/collections/coll-1/count", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "2")
	})
	return httptest.NewServer(mux), &upserts
}

func TestChromaStoreUpsertAndQuery(t *testing.T) {
	srv, upserts := fakeChroma(t)
	defer srv.Close()

	s := NewChromaStore(ChromaConfig{URL: srv.URL, Collection: "rag_docs"})
	ctx := context.Background()

	err := s.Upsert(ctx,
		[]string{"doc.txt_0"},
		[]map[string]interface{}{{"title": "doc.txt", "chunk_id": 0}},
		[]string{"chunk zero"},
		[][]float32{{0.1, 0.2}},
	)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if *upserts != 1 {
		t.Errorf("upsert calls: got %d", *upserts)
	}

	hits, err := s.Query(ctx, []float32{0.1, 0.2}, 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("got %d hits", len(hits))
	}
	if hits[0].ID != "doc.txt_0" || hits[0].Document != "chunk zero" {
		t.Errorf("hit 0: %+v", hits[0])
	}
	if hits[0].Metadata["title"] != "doc.txt" {
		t.Errorf("hit 0 metadata: %v", hits[0].Metadata)
	}
	if hits[0].Distance >= hits[1].Distance {
		t.Error("hits not ordered by increasing distance")
	}

	n, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 2 {
		t.Errorf("Count: got %d", n)
	}
}

func TestChromaStoreUpsertEmpty(t *testing.T) {
	// No server needed: empty upsert must be a no-op.
	s := NewChromaStore(ChromaConfig{URL: "http://127.0.0.1:1", Collection: "c"})
	if err := s.Upsert(context.Background(), nil, nil, nil, nil); err != nil {
		t.Errorf("empty Upsert: %v", err)
	}
}

func TestChromaStoreUnreachable(t *testing.T) {
	s := NewChromaStore(ChromaConfig{URL: "http://127.0.0.1:1", Collection: "c"})
	if _, err := s.Query(context.Background(), []float32{0.1}, 4); err == nil {
		t.Error("expected error when store is unreachable")
	}
}
