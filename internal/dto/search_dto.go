package dto

import (
	"time"

	"github.com/google/uuid"
)

// SearchWeights tunes the hybrid blend. Both components default to 0.5 when
// the request omits them; negative values are rejected up front.
type SearchWeights struct {
	Fts      *float64 `json:"fts" validate:"omitempty,gte=0"`
	Semantic *float64 `json:"semantic" validate:"omitempty,gte=0"`
}

type HybridSearchRequest struct {
	Query   string         `json:"query" validate:"required"`
	Weights *SearchWeights `json:"weights"`
	Limit   int            `json:"limit" validate:"omitempty,gte=1,lte=100"`
}

type HybridSearchResult struct {
	Id         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Content    string     `json:"content"`
	Score      float64    `json:"score"`
	SearchType string     `json:"search_type"` // "fts" | "semantic" | "hybrid"
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

type HybridSearchResponse struct {
	Results  []HybridSearchResult `json:"results"`
	Degraded bool                 `json:"degraded"` // true when the semantic branch was skipped
}

type SemanticSearchRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit" validate:"omitempty,gte=1,lte=100"`
}

type SemanticSearchResult struct {
	NoteId   uuid.UUID `json:"note_id"`
	Title    string    `json:"title"`
	Distance float64   `json:"distance"`
}

type FullTextSearchRequest struct {
	Query string `json:"query" validate:"required"`
	Limit int    `json:"limit" validate:"omitempty,gte=1,lte=100"`
}

type SimilarNoteResult struct {
	NoteId     uuid.UUID  `json:"note_id"`
	Title      string     `json:"title"`
	Similarity float64    `json:"similarity"`
	UpdatedAt  *time.Time `json:"updated_at"`
}
