package contract

import (
	"context"

	"knowledgebase-engine/internal/entity"

	"github.com/google/uuid"
)

type NoteTopicRepository interface {
	// ReplaceForNote swaps the note's assignment set in one operation, so
	// stored assignments never drift from the latest classification.
	// Returns the topic ids affected (old and new) for dirty marking.
	ReplaceForNote(ctx context.Context, noteId uuid.UUID, assignments []*entity.NoteTopic) ([]uuid.UUID, error)

	// DeleteByNoteId removes every assignment for the note and returns the
	// topic ids that lost a member.
	DeleteByNoteId(ctx context.Context, noteId uuid.UUID) ([]uuid.UUID, error)

	DeleteByTopicId(ctx context.Context, topicId uuid.UUID) error

	FindByNoteId(ctx context.Context, noteId uuid.UUID) ([]*entity.NoteTopic, error)

	FindByTopicId(ctx context.Context, topicId uuid.UUID) ([]*entity.NoteTopic, error)
}
