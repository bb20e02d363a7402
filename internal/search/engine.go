// Package search ties retrieval and answer synthesis together.
package search

import (
	"context"

	"go.uber.org/zap"

	"github.com/hyperjump/kotae/internal/embedding"
	"github.com/hyperjump/kotae/internal/llm"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/internal/vectorstore"
	"github.com/hyperjump/kotae/pkg/utils"
)

// NoSourcesAnswer is returned when retrieval yields nothing to ground an
// answer on.
const NoSourcesAnswer = "I could not find anything relevant in the knowledge base for this question."

const fallbackChunkLen = 200

// Engine answers questions over the indexed corpus. Retrieval and synthesis
// both degrade instead of failing: a broken vector store means no sources,
// a broken LLM means an extractive answer built from the retrieved chunks.
type Engine struct {
	embedder  embedding.Embedder
	store     vectorstore.VectorStore
	generator llm.Generator
	defaultK  int
	logger    *zap.Logger
}

// NewEngine creates an Engine. defaultK is used when a query does not specify
// how many chunks to retrieve.
func NewEngine(embedder embedding.Embedder, store vectorstore.VectorStore, generator llm.Generator, defaultK int, logger *zap.Logger) *Engine {
	if defaultK <= 0 {
		defaultK = 4
	}
	return &Engine{
		embedder:  embedder,
		store:     store,
		generator: generator,
		defaultK:  defaultK,
		logger:    logger,
	}
}

// Search embeds the query and returns the k nearest chunks as sources, in
// relevance order. k <= 0 means the engine default. Any failure along the way
// is logged and yields an empty result, never an error: an unanswerable
// question is not an exceptional condition.
func (e *Engine) Search(ctx context.Context, query string, k int) []models.Source {
	if k <= 0 {
		k = e.defaultK
	}
	vec, err := e.embedder.Embed(ctx, query)
	if err != nil {
		e.logger.Warn("query embedding failed", zap.Error(err))
		return []models.Source{}
	}
	hits, err := e.store.Query(ctx, vec, k)
	if err != nil {
		e.logger.Warn("vector store query failed", zap.Error(err))
		return []models.Source{}
	}

	sources := make([]models.Source, 0, len(hits))
	for _, hit := range hits {
		title, _ := hit.Metadata["title"].(string)
		if title == "" {
			title = hit.ID
		}
		sources = append(sources, models.Source{Title: title, Chunk: hit.Document})
	}
	return sources
}

// Synthesize produces an answer to the question from the given sources.
// With no sources it returns NoSourcesAnswer. If the LLM fails, it falls back
// to quoting the most relevant chunks directly.
func (e *Engine) Synthesize(ctx context.Context, question string, sources []models.Source) string {
	if len(sources) == 0 {
		return NoSourcesAnswer
	}
	answer, err := e.generator.Generate(ctx, llm.BuildGroundingPrompt(question, sources))
	if err != nil {
		e.logger.Warn("answer generation failed, using extractive fallback", zap.Error(err))
		return extractiveAnswer(sources)
	}
	return answer
}

// Answer runs retrieval and synthesis in one step.
func (e *Engine) Answer(ctx context.Context, question string, k int) (string, []models.Source) {
	sources := e.Search(ctx, question, k)
	return e.Synthesize(ctx, question, sources), sources
}

// extractiveAnswer quotes the top retrieved chunks verbatim, truncated so a
// degraded answer stays readable.
func extractiveAnswer(sources []models.Source) string {
	answer := "The assistant is unavailable right now. The most relevant excerpts found:"
	n := len(sources)
	if n > 2 {
		n = 2
	}
	for _, src := range sources[:n] {
		answer += "\n\n" + src.Title + ": " + utils.Truncate(src.Chunk, fallbackChunkLen)
	}
	return answer
}
