// Package history keeps an append-only record of answered questions.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/hyperjump/kotae/internal/models"
)

// Store records question/answer exchanges in SQLite. Rows are only ever
// inserted; nothing updates or deletes them.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the history database at path and ensures the
// schema exists.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	schema := `
	CREATE TABLE IF NOT EXISTS qa_history (
		seq        INTEGER PRIMARY KEY AUTOINCREMENT,
		id         TEXT NOT NULL,
		question   TEXT NOT NULL,
		answer     TEXT NOT NULL,
		sources    TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record appends one exchange. The entry's ID and timestamp are assigned here.
func (s *Store) Record(ctx context.Context, question, answer string, sources []models.Source) error {
	if sources == nil {
		sources = []models.Source{}
	}
	encoded, err := json.Marshal(sources)
	if err != nil {
		return fmt.Errorf("encode sources: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO qa_history (id, question, answer, sources, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.NewString(), question, answer, string(encoded), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// List returns all recorded exchanges in insertion order.
func (s *Store) List(ctx context.Context) ([]models.QAHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question, answer, sources, created_at FROM qa_history ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	entries := []models.QAHistoryEntry{}
	for rows.Next() {
		var entry models.QAHistoryEntry
		var encoded string
		if err := rows.Scan(&entry.ID, &entry.Question, &entry.Answer, &encoded, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		if err := json.Unmarshal([]byte(encoded), &entry.Sources); err != nil {
			return nil, fmt.Errorf("decode sources: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Count returns the number of recorded exchanges.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM qa_history`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
