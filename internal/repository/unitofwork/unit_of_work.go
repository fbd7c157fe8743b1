package unitofwork

import (
	"context"

	"knowledgebase-engine/internal/repository/contract"
)

// UnitOfWork groups the engine's repositories under one optional transaction.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	NoteRepository() contract.NoteRepository
	NoteEmbeddingRepository() contract.NoteEmbeddingRepository
	TopicRepository() contract.TopicRepository
	NoteTopicRepository() contract.NoteTopicRepository
}
