// Package llm wraps the embedding and generation providers behind small
// interfaces so retrieval and synthesis do not depend on a vendor SDK.
package llm

import (
	"context"
	"errors"

	"github.com/cloo-solutions/onboardai/internal/domain"
)

// EmbedTask selects the provider's optimization for an embedding call.
type EmbedTask string

const (
	TaskDocument EmbedTask = "RETRIEVAL_DOCUMENT"
	TaskQuery    EmbedTask = "RETRIEVAL_QUERY"
)

// DefaultDimensions is the vector width stored in the knowledge table.
const DefaultDimensions = 768

var (
	// ErrEmptyText is returned when text is empty
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrWrongDimensions is returned when embedding has wrong dimensions
	ErrWrongDimensions = errors.New("embedding has wrong dimensions")
	// ErrNoCandidates is returned when the provider produced nothing usable
	ErrNoCandidates = errors.New("no candidates returned")
)

// Embedder turns text into a fixed-width vector.
type Embedder interface {
	Embed(ctx context.Context, text string, task EmbedTask) ([]float32, error)
}

// GenerateOptions bounds one generation call.
type GenerateOptions struct {
	Temperature     float32
	MaxOutputTokens int32
	JSON            bool
}

// Generation is the outcome of a generation call. Outcome is OutcomeOK only
// when Text is non-empty and the provider did not flag the response.
type Generation struct {
	Text         string
	FinishReason string
	Outcome      domain.Outcome
}

// Generator produces text from a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (Generation, error)
}

// NoOpEmbedder is used when no embedding credential is configured.
type NoOpEmbedder struct{}

func (NoOpEmbedder) Embed(ctx context.Context, text string, task EmbedTask) ([]float32, error) {
	return nil, domain.ErrNotConfigured
}

// NoOpGenerator is used when no generation credential is configured.
type NoOpGenerator struct{}

func (NoOpGenerator) Generate(ctx context.Context, prompt string, opts GenerateOptions) (Generation, error) {
	return Generation{Outcome: domain.OutcomeUnconfigured}, domain.ErrNotConfigured
}

// IsConfigured reports whether g is a real provider.
func IsConfigured(g Generator) bool {
	if g == nil {
		return false
	}
	_, noop := g.(NoOpGenerator)
	return !noop
}

func checkDimensions(vec []float32, want int) error {
	if want <= 0 {
		want = DefaultDimensions
	}
	if len(vec) != want {
		return ErrWrongDimensions
	}
	return nil
}
