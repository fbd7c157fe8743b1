package contract

import (
	"context"

	"knowledgebase-engine/internal/entity"

	"github.com/google/uuid"
)

// ScoredNoteEmbedding pairs an embedding with its cosine similarity to a
// query vector, in [-1, 1].
type ScoredNoteEmbedding struct {
	Embedding  *entity.NoteEmbedding
	Similarity float64
}

type NoteEmbeddingRepository interface {
	// Upsert stores the embedding, replacing any prior vector for the same
	// (note, model) pair. Last write wins.
	Upsert(ctx context.Context, embedding *entity.NoteEmbedding) error

	DeleteByNoteId(ctx context.Context, noteId uuid.UUID) error

	// FindByNoteId returns the note's embedding under the given model, or
	// nil when the note has not been embedded yet.
	FindByNoteId(ctx context.Context, noteId uuid.UUID, model string) (*entity.NoteEmbedding, error)

	// FindAllByModel returns every stored embedding for one model.
	FindAllByModel(ctx context.Context, model string) ([]*entity.NoteEmbedding, error)

	// FindByNoteIds returns embeddings for the given notes under one model.
	FindByNoteIds(ctx context.Context, noteIds []uuid.UUID, model string) ([]*entity.NoteEmbedding, error)

	// CountByModel returns how many notes have an embedding under the model.
	CountByModel(ctx context.Context, model string) (int64, error)

	// SearchSimilarWithScore returns the closest embeddings to the query
	// vector for one user, highest similarity first, filtered by threshold.
	SearchSimilarWithScore(ctx context.Context, vector []float32, model string, limit int, userId uuid.UUID, threshold float64) ([]*ScoredNoteEmbedding, error)
}
