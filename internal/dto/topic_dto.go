package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateTopicRequest struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description"`
	Color        string   `json:"color"`
	Keywords     []string `json:"keywords"`
	IsPredefined bool     `json:"is_predefined"`
}

type CreateTopicResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowTopicResponse struct {
	Id           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Color        string    `json:"color"`
	Keywords     []string  `json:"keywords"`
	IsPredefined bool      `json:"is_predefined"`
	NoteCount    int       `json:"note_count"`
	HasCentroid  bool      `json:"has_centroid"`
	CreatedAt    time.Time `json:"created_at"`
}

// NoteTopicResponse is one classification assignment for a note.
type NoteTopicResponse struct {
	TopicId    uuid.UUID `json:"topic_id"`
	Name       string    `json:"name"`
	Confidence float32   `json:"confidence"`
}

type ClassifyNoteResponse struct {
	NoteId uuid.UUID           `json:"note_id"`
	Topics []NoteTopicResponse `json:"topics"`
}
