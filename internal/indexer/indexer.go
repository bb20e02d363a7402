// Package indexer builds the vector index from the document corpus.
package indexer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vectorstore"
)

// Indexer scans the corpus directory and rebuilds the vector index.
// Re-running it over an unchanged corpus overwrites chunks in place: chunk
// IDs are derived from filename and position, so the index never grows from
// a rescan.
type Indexer struct {
	corpusDir string
	extractor *extract.Extractor
	chunker   *Chunker
	embedder  embedding.Embedder
	store     vectorstore.VectorStore
	logger    *zap.Logger
}

// New creates an Indexer over corpusDir.
func New(corpusDir string, extractor *extract.Extractor, chunker *Chunker, embedder embedding.Embedder, store vectorstore.VectorStore, logger *zap.Logger) *Indexer {
	return &Indexer{
		corpusDir: corpusDir,
		extractor: extractor,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		logger:    logger,
	}
}

// IndexDocuments performs a full rescan of the corpus directory: extract,
// sanitize and chunk every supported document, embed all chunks in one batch,
// and upsert everything in a single call. A document that fails extraction is
// logged and skipped; it never aborts the scan. An empty corpus is not an
// error. If the embedding service fails, chunks are stored with zero vectors
// so the document text is still present in the index.
func (idx *Indexer) IndexDocuments(ctx context.Context) error {
	entries, err := os.ReadDir(idx.corpusDir)
	if err != nil {
		return fmt.Errorf("read corpus dir: %w", err)
	}

	var chunks []models.Chunk
	docs := 0
	for _, entry := range entries {
		if entry.IsDir() || !idx.extractor.Supports(filepath.Ext(entry.Name())) {
			continue
		}
		path := filepath.Join(idx.corpusDir, entry.Name())
		text, err := idx.extractor.Extract(path)
		if err != nil {
			idx.logger.Warn("skipping document", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		pieces := idx.chunker.Chunk(Sanitize(text))
		for i, piece := range pieces {
			chunks = append(chunks, models.Chunk{Title: entry.Name(), Index: i, Text: piece})
		}
		docs++
	}

	if len(chunks) == 0 {
		idx.logger.Info("nothing to index", zap.String("dir", idx.corpusDir))
		return nil
	}

	ids := make([]string, len(chunks))
	metadatas := make([]map[string]interface{}, len(chunks))
	documents := make([]string, len(chunks))
	texts := make([]string, len(chunks))
	for i := range chunks {
		ids[i] = chunks[i].ID()
		metadatas[i] = chunks[i].Metadata()
		documents[i] = chunks[i].Text
		texts[i] = chunks[i].Text
	}

	embeddings, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		// Keep the document text searchable even without real vectors.
		idx.logger.Error("embedding failed, storing zero vectors", zap.Error(err))
		embeddings = make([][]float32, len(chunks))
		for i := range embeddings {
			embeddings[i] = make([]float32, idx.embedder.Dimensions())
		}
	}

	if err := idx.store.Upsert(ctx, ids, metadatas, documents, embeddings); err != nil {
		return fmt.Errorf("upsert chunks: %w", err)
	}

	idx.logger.Info("index rebuilt",
		zap.Int("documents", docs),
		zap.Int("chunks", len(chunks)))
	return nil
}

// DocumentCount returns the number of supported documents currently in the
// corpus directory.
func (idx *Indexer) DocumentCount() (int, error) {
	entries, err := os.ReadDir(idx.corpusDir)
	if err != nil {
		return 0, fmt.Errorf("read corpus dir: %w", err)
	}
	n := 0
	for _, entry := range entries {
		if !entry.IsDir() && idx.extractor.Supports(filepath.Ext(entry.Name())) {
			n++
		}
	}
	return n, nil
}
