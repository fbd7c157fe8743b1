package entity

import (
	"time"

	"github.com/google/uuid"
)

// NoteEmbedding is the stored vector for one note under one model. A note
// carries at most one embedding per model; re-embedding replaces the vector.
type NoteEmbedding struct {
	Id          uuid.UUID
	NoteId      uuid.UUID
	Vector      []float32
	Model       string
	Dimensions  int
	ContentHash string
	CreatedAt   time.Time
	UpdatedAt   *time.Time
}
