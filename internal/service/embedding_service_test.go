package service

import (
	"context"
	"errors"
	"testing"

	"knowledgebase-engine/internal/pkg/serverutils"
	"knowledgebase-engine/pkg/embedding"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRequiresReadyProvider(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newEmbeddingService(env.newTopicService(TopicServiceConfig{}))

	env.state.Shutdown()

	_, err := svc.Generate(context.Background(), "hello", embedding.TaskRetrievalDocument)
	assert.ErrorIs(t, err, embedding.ErrProviderUnavailable)
}

func TestGenerateRecordsProviderFailure(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newEmbeddingService(env.newTopicService(TopicServiceConfig{}))

	boom := errors.New("backend down")
	env.provider.GenerateFunc = func(ctx context.Context, text string, taskType string) ([]float32, error) {
		return nil, &embedding.ProviderError{Provider: "mock", Err: boom}
	}

	_, err := svc.Generate(context.Background(), "hello", embedding.TaskRetrievalDocument)
	require.Error(t, err)

	// Readiness survives transient failures; only the last error is kept.
	assert.True(t, env.state.Ready())
	assert.ErrorIs(t, env.state.LastError(), boom)
}

func TestStoreRejectsDimensionMismatch(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newEmbeddingService(env.newTopicService(TopicServiceConfig{}))

	note := env.createNote(t, "note", "content")

	err := svc.Store(context.Background(), note.Id, []float32{1, 0}, "hash")
	require.Error(t, err)

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.KindValidation, appErr.Kind)
}

func TestStoreReplacesPriorVector(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newEmbeddingService(env.newTopicService(TopicServiceConfig{}))
	ctx := context.Background()

	note := env.createNote(t, "note", "content")

	require.NoError(t, svc.Store(ctx, note.Id, []float32{1, 0, 0}, "h1"))
	require.NoError(t, svc.Store(ctx, note.Id, []float32{0, 1, 0}, "h2"))

	emb, err := svc.Get(ctx, note.Id)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1, 0}, emb.Vector)
	assert.Equal(t, "h2", emb.ContentHash)
}

func TestDeleteEmbeddingOtherUsersNote(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newEmbeddingService(env.newTopicService(TopicServiceConfig{}))
	ctx := context.Background()

	note := env.createNote(t, "note", "content")
	env.storeVector(t, note.Id, []float32{1, 0, 0})

	err := svc.Delete(ctx, uuid.New(), note.Id)
	require.Error(t, err)

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.KindNotFound, appErr.Kind)

	// The vector is untouched.
	emb, err := svc.Get(ctx, note.Id)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 0, 0}, emb.Vector)
}

func TestGetMissingEmbedding(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newEmbeddingService(env.newTopicService(TopicServiceConfig{}))

	note := env.createNote(t, "note", "content")

	_, err := svc.Get(context.Background(), note.Id)
	assert.ErrorIs(t, err, ErrEmbeddingNotFound)
}

func TestGetStatusCountsPending(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newEmbeddingService(env.newTopicService(TopicServiceConfig{}))
	ctx := context.Background()

	embeddedNote := env.createNote(t, "embedded", "content")
	env.createNote(t, "pending", "content")
	env.storeVector(t, embeddedNote.Id, []float32{1, 0, 0})

	status, err := svc.GetStatus(ctx, env.userId)
	require.NoError(t, err)

	assert.True(t, status.Ready)
	assert.Equal(t, "mock-embedder", status.Model)
	assert.Equal(t, int64(1), status.Embedded)
	assert.Equal(t, int64(1), status.Pending)
	assert.Equal(t, int64(2), status.Total)
	assert.Equal(t, status.Total, status.Embedded+status.Pending)
}
