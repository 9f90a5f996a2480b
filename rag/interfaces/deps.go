package interfaces

import (
	"context"

	"github.com/satyalearn/satyarag/rag/types"
)

// Embedder turns text into a fixed-dimension unit-norm vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore exposes the backing collections. Implementations must be
// safe for concurrent use; retrieval workers call Query in parallel.
type VectorStore interface {
	ListCollections(ctx context.Context) ([]string, error)
	Query(ctx context.Context, collection string, embedding []float32, k int) ([]types.RawHit, error)
}

// Generator produces an answer from a context block and a question.
// When onToken is non-nil it is invoked for every token as it arrives;
// the full answer is returned either way.
type Generator interface {
	Generate(ctx context.Context, contextText, question string, onToken func(string)) (string, error)
}

// EdgeCaseHandler short-circuits trivial inputs (empty, greeting, thanks)
// with a canned response. Empty string means no edge case matched.
type EdgeCaseHandler interface {
	Check(raw string) string
}

// Normalizer cleans a raw question before retrieval. Notes describe the
// transformations applied. Failure must not abort the pipeline.
type Normalizer interface {
	Normalize(raw string) (clean string, notes []string, err error)
}

// DiagramLookup finds a text diagram matching a question, if any.
type DiagramLookup interface {
	FindByText(text string) string
}
