package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

type CreateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

type ShowNoteResponse struct {
	Id        uuid.UUID           `json:"id"`
	Title     string              `json:"title"`
	Content   string              `json:"content"`
	Topics    []NoteTopicResponse `json:"topics"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt *time.Time          `json:"updated_at"`
}

type UpdateNoteRequest struct {
	Id      uuid.UUID
	Title   string `json:"title" validate:"required"`
	Content string `json:"content"`
}

type UpdateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

// PublishEmbedNoteMessage is the payload carried on the embed-note pipeline.
type PublishEmbedNoteMessage struct {
	NoteId uuid.UUID `json:"note_id"`
}
