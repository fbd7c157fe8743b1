package service

import (
	"context"
	"testing"

	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/pkg/serverutils"
	"knowledgebase-engine/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyNoteTopKAndFloor(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newTopicService(TopicServiceConfig{MinSimilarity: 0.5, TopK: 1})

	note := env.createNote(t, "note", "content")
	env.storeVector(t, note.Id, []float32{1, 0, 0})

	// Cosine against [1,0,0] is the first component of a unit centroid.
	env.createTopic(t, "Topic A", []float32{0.9, 0.43589, 0}, true)
	topicB := env.createTopic(t, "Topic B", []float32{0.95, 0.31225, 0}, true)

	topics, err := svc.ClassifyNote(context.Background(), env.userId, note.Id)
	require.NoError(t, err)

	require.Len(t, topics, 1)
	assert.Equal(t, topicB.Id, topics[0].TopicId)
	assert.InDelta(t, 0.95, float64(topics[0].Confidence), 1e-3)

	uow := env.factory.NewUnitOfWork(context.Background())
	assignments, err := uow.NoteTopicRepository().FindByNoteId(context.Background(), note.Id)
	require.NoError(t, err)
	require.Len(t, assignments, 1)
	assert.Equal(t, topicB.Id, assignments[0].TopicId)
}

func TestClassifyNoteWithoutEmbedding(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newTopicService(TopicServiceConfig{})

	note := env.createNote(t, "note", "content")

	_, err := svc.ClassifyNote(context.Background(), env.userId, note.Id)
	assert.ErrorIs(t, err, ErrEmbeddingNotFound)
}

func TestClassifyNoteOtherUsersNote(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newTopicService(TopicServiceConfig{})
	ctx := context.Background()

	note := env.createNote(t, "note", "content")
	env.storeVector(t, note.Id, []float32{1, 0, 0})
	env.createTopic(t, "Topic", []float32{1, 0, 0}, true)

	_, err := svc.ClassifyNote(ctx, uuid.New(), note.Id)
	require.Error(t, err)

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.KindNotFound, appErr.Kind)

	// The foreign caller left no assignments behind.
	uow := env.factory.NewUnitOfWork(ctx)
	assignments, err := uow.NoteTopicRepository().FindByNoteId(ctx, note.Id)
	require.NoError(t, err)
	assert.Empty(t, assignments)
}

func TestClassifyNoteNoTopics(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newTopicService(TopicServiceConfig{})

	note := env.createNote(t, "note", "content")
	env.storeVector(t, note.Id, []float32{1, 0, 0})

	topics, err := svc.ClassifyNote(context.Background(), env.userId, note.Id)
	require.NoError(t, err)
	assert.Empty(t, topics)
}

func TestClassifyNoteSkipsTopicsWithoutCentroid(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newTopicService(TopicServiceConfig{MinSimilarity: 0.1, TopK: 3})

	note := env.createNote(t, "note", "content")
	env.storeVector(t, note.Id, []float32{1, 0, 0})

	env.createTopic(t, "Empty", nil, true)
	withCentroid := env.createTopic(t, "Full", []float32{1, 0, 0}, true)

	topics, err := svc.ClassifyNote(context.Background(), env.userId, note.Id)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Equal(t, withCentroid.Id, topics[0].TopicId)
}

func TestRecomputeCentroidsMean(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newTopicService(TopicServiceConfig{})
	ctx := context.Background()

	topic := env.createTopic(t, "Cluster", []float32{0, 0, 1}, true)

	vectors := [][]float32{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	uow := env.factory.NewUnitOfWork(ctx)
	for _, v := range vectors {
		note := env.createNote(t, "member", "content")
		env.storeVector(t, note.Id, v)
		_, err := uow.NoteTopicRepository().ReplaceForNote(ctx, note.Id, []*entity.NoteTopic{{
			Id:         uuid.New(),
			NoteId:     note.Id,
			TopicId:    topic.Id,
			Confidence: 1,
		}})
		require.NoError(t, err)
	}

	require.NoError(t, svc.RecomputeCentroids(ctx))

	stored, err := uow.TopicRepository().FindOne(ctx, specification.ByID{ID: topic.Id})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, []float32{4, 5, 6}, stored.Centroid)
	assert.Equal(t, 3, stored.NoteCount)
}

func TestRecomputeEmptyPredefinedTopicKeepsRow(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newTopicService(TopicServiceConfig{})
	ctx := context.Background()

	topic := env.createTopic(t, "Seeded", []float32{1, 0, 0}, true)

	require.NoError(t, svc.RecomputeCentroids(ctx))

	uow := env.factory.NewUnitOfWork(ctx)
	stored, err := uow.TopicRepository().FindOne(ctx, specification.ByID{ID: topic.Id})
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Nil(t, stored.Centroid)
	assert.Equal(t, 0, stored.NoteCount)
}

func TestRecomputePrunesEmptyAutoTopic(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newTopicService(TopicServiceConfig{})
	ctx := context.Background()

	topic := env.createTopic(t, "Auto", []float32{1, 0, 0}, false)

	require.NoError(t, svc.RecomputeCentroids(ctx))

	uow := env.factory.NewUnitOfWork(ctx)
	stored, err := uow.TopicRepository().FindOne(ctx, specification.ByID{ID: topic.Id})
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestDeleteEmbeddingExcludesNoteFromRecompute(t *testing.T) {
	env := newTestEnv(t, 3)
	topicSvc := env.newTopicService(TopicServiceConfig{})
	embSvc := env.newEmbeddingService(topicSvc)
	ctx := context.Background()

	topic := env.createTopic(t, "Cluster", []float32{0, 0, 1}, true)

	noteA := env.createNote(t, "a", "content")
	noteB := env.createNote(t, "b", "content")
	env.storeVector(t, noteA.Id, []float32{2, 0, 0})
	env.storeVector(t, noteB.Id, []float32{4, 0, 0})

	uow := env.factory.NewUnitOfWork(ctx)
	for _, id := range []uuid.UUID{noteA.Id, noteB.Id} {
		_, err := uow.NoteTopicRepository().ReplaceForNote(ctx, id, []*entity.NoteTopic{{
			Id:         uuid.New(),
			NoteId:     id,
			TopicId:    topic.Id,
			Confidence: 1,
		}})
		require.NoError(t, err)
	}

	require.NoError(t, embSvc.Delete(ctx, env.userId, noteB.Id))

	// The deleted note's assignment row is gone from the topic's member set.
	members, err := uow.NoteTopicRepository().FindByTopicId(ctx, topic.Id)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, noteA.Id, members[0].NoteId)

	require.NoError(t, topicSvc.RecomputeCentroids(ctx))

	stored, err := uow.TopicRepository().FindOne(ctx, specification.ByID{ID: topic.Id})
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 0, 0}, stored.Centroid)
	assert.Equal(t, 1, stored.NoteCount)
}

func TestFindSimilarNotesExcludesSelf(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newTopicService(TopicServiceConfig{})
	ctx := context.Background()

	noteA := env.createNote(t, "a", "content")
	noteB := env.createNote(t, "b", "content")
	noteC := env.createNote(t, "c", "content")
	env.storeVector(t, noteA.Id, []float32{1, 0, 0})
	env.storeVector(t, noteB.Id, []float32{0.9, 0.43589, 0})
	env.storeVector(t, noteC.Id, []float32{0, 1, 0})

	results, err := svc.FindSimilarNotes(ctx, env.userId, noteA.Id, 10)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.Equal(t, noteB.Id, results[0].NoteId)
	assert.Equal(t, noteC.Id, results[1].NoteId)
	assert.Greater(t, results[0].Similarity, results[1].Similarity)
}
