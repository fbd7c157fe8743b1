// Package fts abstracts the lexical full-text engine consumed by hybrid
// search. The engine itself is external; this package defines the ranked-hit
// contract plus a Postgres implementation and an in-memory test double.
package fts

import (
	"context"

	"github.com/google/uuid"
)

// Hit is one ranked lexical match. Score may be unbounded depending on the
// engine; the search coordinator normalizes before merging.
type Hit struct {
	NoteId uuid.UUID
	Score  float64
}

// Provider executes lexical queries against the full-text index.
type Provider interface {
	Search(ctx context.Context, userId uuid.UUID, query string, limit int) ([]Hit, error)
}
