package llm

import (
	"strings"

	"github.com/hyperjump/kotae/internal/models"
)

// BuildGroundingPrompt assembles the prompt for answer synthesis: one
// "Source: {title} -> {chunk}" line per source, then the question and an
// instruction to answer precisely and cite sources.
func BuildGroundingPrompt(question string, sources []models.Source) string {
	var b strings.Builder
	b.WriteString("Here are excerpts from documents:\n")
	for _, src := range sources {
		b.WriteString("Source: ")
		b.WriteString(src.Title)
		b.WriteString(" -> ")
		b.WriteString(src.Chunk)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\nSynthesize a precise answer, citing your sources when possible.")
	return b.String()
}
