package service

import (
	"context"
	"testing"
	"time"

	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/repository/memory"
	"knowledgebase-engine/internal/repository/unitofwork"
	"knowledgebase-engine/pkg/embedding"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

type testEnv struct {
	factory  unitofwork.RepositoryFactory
	provider *embedding.MockProvider
	state    *embedding.ProviderState
	userId   uuid.UUID
}

func newTestEnv(t *testing.T, dims int) *testEnv {
	t.Helper()

	provider := embedding.NewMockProvider()
	provider.Dims = dims

	state := embedding.NewProviderState()
	state.Init(provider.Model(), provider.Dimensions())

	return &testEnv{
		factory:  memory.NewRepositoryFactory(memory.NewStore()),
		provider: provider,
		state:    state,
		userId:   uuid.New(),
	}
}

func (e *testEnv) createNote(t *testing.T, title, content string) *entity.Note {
	t.Helper()

	note := &entity.Note{
		Id:        uuid.New(),
		Title:     title,
		Content:   content,
		UserId:    e.userId,
		CreatedAt: time.Now(),
	}
	uow := e.factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.NoteRepository().Create(context.Background(), note))
	return note
}

func (e *testEnv) storeVector(t *testing.T, noteId uuid.UUID, vector []float32) {
	t.Helper()

	uow := e.factory.NewUnitOfWork(context.Background())
	err := uow.NoteEmbeddingRepository().Upsert(context.Background(), &entity.NoteEmbedding{
		Id:         uuid.New(),
		NoteId:     noteId,
		Vector:     vector,
		Model:      e.provider.Model(),
		Dimensions: len(vector),
		CreatedAt:  time.Now(),
	})
	require.NoError(t, err)
}

func (e *testEnv) createTopic(t *testing.T, name string, centroid []float32, predefined bool) *entity.Topic {
	t.Helper()

	topic := &entity.Topic{
		Id:           uuid.New(),
		Name:         name,
		IsPredefined: predefined,
		Centroid:     centroid,
		CreatedAt:    time.Now(),
	}
	uow := e.factory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.TopicRepository().Create(context.Background(), topic))
	return topic
}

func (e *testEnv) newTopicService(cfg TopicServiceConfig) ITopicService {
	return NewTopicService(e.factory, e.state, nil, cfg, nopLogger{})
}

func (e *testEnv) newEmbeddingService(topicService ITopicService) IEmbeddingService {
	return NewEmbeddingService(e.factory, e.provider, e.state, topicService, time.Second, nopLogger{})
}
