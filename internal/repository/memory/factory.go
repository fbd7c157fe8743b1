// Package memory provides in-memory repository doubles. They back the service
// tests and mirror the behavior of the GORM implementations, including cosine
// ranking for similarity search.
package memory

import (
	"context"
	"sync"

	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/repository/contract"
	"knowledgebase-engine/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// Store is the shared backing state for all memory repositories.
type Store struct {
	mu         sync.RWMutex
	notes      map[uuid.UUID]*entity.Note
	embeddings map[uuid.UUID]map[string]*entity.NoteEmbedding // note id -> model -> embedding
	topics     map[uuid.UUID]*entity.Topic
	topicOrder []uuid.UUID // creation order, the classification tie-break
	noteTopics map[uuid.UUID]*entity.NoteTopic
}

func NewStore() *Store {
	return &Store{
		notes:      make(map[uuid.UUID]*entity.Note),
		embeddings: make(map[uuid.UUID]map[string]*entity.NoteEmbedding),
		topics:     make(map[uuid.UUID]*entity.Topic),
		noteTopics: make(map[uuid.UUID]*entity.NoteTopic),
	}
}

// Factory implements unitofwork.RepositoryFactory over a shared Store.
type Factory struct {
	store *Store
}

func NewRepositoryFactory(store *Store) unitofwork.RepositoryFactory {
	return &Factory{store: store}
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &memoryUnitOfWork{store: f.store}
}

// memoryUnitOfWork has no real transactions; Begin/Commit/Rollback are no-ops
// so service code written against the production UoW runs unchanged.
type memoryUnitOfWork struct {
	store *Store
	inTx  bool
}

func (u *memoryUnitOfWork) Begin(ctx context.Context) error {
	u.inTx = true
	return nil
}

func (u *memoryUnitOfWork) Commit() error {
	u.inTx = false
	return nil
}

func (u *memoryUnitOfWork) Rollback() error {
	u.inTx = false
	return nil
}

func (u *memoryUnitOfWork) NoteRepository() contract.NoteRepository {
	return &noteRepository{store: u.store}
}

func (u *memoryUnitOfWork) NoteEmbeddingRepository() contract.NoteEmbeddingRepository {
	return &noteEmbeddingRepository{store: u.store}
}

func (u *memoryUnitOfWork) TopicRepository() contract.TopicRepository {
	return &topicRepository{store: u.store}
}

func (u *memoryUnitOfWork) NoteTopicRepository() contract.NoteTopicRepository {
	return &noteTopicRepository{store: u.store}
}
