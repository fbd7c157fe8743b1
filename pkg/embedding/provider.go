// Package embedding abstracts the external model that turns note text into
// fixed-dimension vectors. Exactly one provider is active per process; its
// readiness is tracked by ProviderState so search can degrade to lexical-only
// results instead of failing when the backend is down.
package embedding

import (
	"context"
	"errors"
	"fmt"
)

// ErrProviderUnavailable is returned when no provider has been initialized
// or the active provider has been shut down.
var ErrProviderUnavailable = errors.New("embedding provider unavailable")

// ProviderError wraps a generation failure from the backing model. Callers
// treat it as recoverable: the note stays pending until a retry succeeds.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("embedding provider %s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Provider defines the interface for generating text embeddings.
type Provider interface {
	// Model returns the identifier of the embedding model, e.g.
	// "text-embedding-004". Embeddings from different models are never mixed.
	Model() string

	// Dimensions returns the model's declared vector dimensionality.
	Dimensions() int

	// Generate produces the embedding for the given text. taskType hints
	// whether the text is a document or a query; providers that do not
	// distinguish ignore it.
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)
}

// Task type hints understood by the Gemini API; other providers ignore them.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)
