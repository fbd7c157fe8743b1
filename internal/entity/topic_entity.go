package entity

import (
	"time"

	"github.com/google/uuid"
)

// Topic is a named cluster of notes. Centroid is nil until at least one note
// is assigned. Predefined topics are seeded and never pruned; auto-discovered
// topics may be created and removed by the classifier.
type Topic struct {
	Id           uuid.UUID
	Name         string
	Description  string
	Color        string
	Keywords     []string
	IsPredefined bool
	Centroid     []float32
	NoteCount    int
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}
