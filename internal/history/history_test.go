package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/hyperjump/kotae/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sources := []models.Source{{Title: "doc.txt", Chunk: "relevant text"}}
	if err := s.Record(ctx, "first question", "first answer", sources); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(ctx, "second question", "second answer", nil); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries", len(entries))
	}
	if entries[0].Question != "first question" || entries[1].Question != "second question" {
		t.Errorf("entries out of insertion order: %+v", entries)
	}
	if entries[0].ID == "" || entries[0].ID == entries[1].ID {
		t.Error("entries must get distinct non-empty IDs")
	}
	if entries[0].CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
	if len(entries[0].Sources) != 1 || entries[0].Sources[0].Title != "doc.txt" {
		t.Errorf("sources: %+v", entries[0].Sources)
	}
	if entries[1].Sources == nil || len(entries[1].Sources) != 0 {
		t.Errorf("nil sources must round-trip as empty list, got %#v", entries[1].Sources)
	}
}

func TestListEmpty(t *testing.T) {
	s := newTestStore(t)
	entries, err := s.List(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries", len(entries))
	}
}

func TestCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := s.Record(ctx, "q", "a", nil); err != nil {
			t.Fatal(err)
		}
	}
	n, err := s.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("Count: got %d, want 3", n)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(context.Background(), "q", "a", nil); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := NewStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	n, err := s2.Count(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("entries lost across reopen: got %d", n)
	}
}
