// Package llm provides answer generation via an OpenAI-compatible chat API.
package llm

import "context"

// Generator produces free text from a prompt. It may fail at any time (quota,
// network, malformed response); callers are expected to degrade gracefully.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
