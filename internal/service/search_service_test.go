package service

import (
	"context"
	"errors"
	"testing"

	"knowledgebase-engine/internal/dto"
	"knowledgebase-engine/internal/pkg/serverutils"
	"knowledgebase-engine/pkg/embedding"
	"knowledgebase-engine/pkg/fts"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFtsProvider struct {
	hits []fts.Hit
	err  error
}

func (s *stubFtsProvider) Search(ctx context.Context, userId uuid.UUID, query string, limit int) ([]fts.Hit, error) {
	return s.hits, s.err
}

func (e *testEnv) newSearchService(ftsProvider fts.Provider) ISearchService {
	embSvc := e.newEmbeddingService(e.newTopicService(TopicServiceConfig{}))
	return NewSearchService(e.factory, ftsProvider, embSvc, e.state, nil, SearchServiceConfig{}, nopLogger{})
}

func TestHybridSearchLexicalOnlyNote(t *testing.T) {
	env := newTestEnv(t, 3)
	ctx := context.Background()

	note := env.createNote(t, "only lexical", "content")
	svc := env.newSearchService(&stubFtsProvider{hits: []fts.Hit{{NoteId: note.Id, Score: 0.8}}})

	res, err := svc.HybridSearch(ctx, env.userId, &dto.HybridSearchRequest{Query: "foo"})
	require.NoError(t, err)

	assert.False(t, res.Degraded)
	require.Len(t, res.Results, 1)
	assert.Equal(t, note.Id, res.Results[0].Id)
	assert.Equal(t, "fts", res.Results[0].SearchType)
	assert.InDelta(t, 0.4, res.Results[0].Score, 1e-9)
}

func TestHybridSearchMergesBothBranches(t *testing.T) {
	env := newTestEnv(t, 3)
	ctx := context.Background()

	note := env.createNote(t, "both branches", "content")
	// Query embeds to [1,0,0]; the stored vector has cosine similarity 0.6.
	env.provider.GenerateFunc = func(ctx context.Context, text string, taskType string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	env.storeVector(t, note.Id, []float32{0.6, 0.8, 0})

	svc := env.newSearchService(&stubFtsProvider{hits: []fts.Hit{{NoteId: note.Id, Score: 0.8}}})

	res, err := svc.HybridSearch(ctx, env.userId, &dto.HybridSearchRequest{Query: "foo"})
	require.NoError(t, err)

	require.Len(t, res.Results, 1)
	assert.Equal(t, "hybrid", res.Results[0].SearchType)
	// 0.5*0.8 + 0.5*((0.6+1)/2) = 0.8
	assert.InDelta(t, 0.8, res.Results[0].Score, 1e-6)
}

func TestHybridSearchSemanticOnlyNote(t *testing.T) {
	env := newTestEnv(t, 3)
	ctx := context.Background()

	note := env.createNote(t, "only semantic", "content")
	env.provider.GenerateFunc = func(ctx context.Context, text string, taskType string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	env.storeVector(t, note.Id, []float32{1, 0, 0})

	svc := env.newSearchService(&stubFtsProvider{})

	res, err := svc.HybridSearch(ctx, env.userId, &dto.HybridSearchRequest{Query: "foo"})
	require.NoError(t, err)

	require.Len(t, res.Results, 1)
	assert.Equal(t, "semantic", res.Results[0].SearchType)
	// 0.5*((1+1)/2) = 0.5
	assert.InDelta(t, 0.5, res.Results[0].Score, 1e-6)
}

func TestHybridSearchDegradedEqualsFullText(t *testing.T) {
	env := newTestEnv(t, 3)
	ctx := context.Background()

	noteA := env.createNote(t, "first", "content")
	noteB := env.createNote(t, "second", "content")
	svc := env.newSearchService(&stubFtsProvider{hits: []fts.Hit{
		{NoteId: noteA.Id, Score: 3.0},
		{NoteId: noteB.Id, Score: 1.5},
	}})

	env.state.Shutdown()

	hybrid, err := svc.HybridSearch(ctx, env.userId, &dto.HybridSearchRequest{Query: "foo"})
	require.NoError(t, err)

	fullText, err := svc.FullTextSearch(ctx, env.userId, &dto.FullTextSearchRequest{Query: "foo"})
	require.NoError(t, err)

	assert.True(t, hybrid.Degraded)
	for _, r := range hybrid.Results {
		assert.Equal(t, "fts", r.SearchType)
	}
	assert.Equal(t, fullText, hybrid.Results)
}

func TestHybridSearchMidRequestFailureEqualsFullText(t *testing.T) {
	env := newTestEnv(t, 3)
	ctx := context.Background()

	noteA := env.createNote(t, "first", "content")
	noteB := env.createNote(t, "second", "content")
	svc := env.newSearchService(&stubFtsProvider{hits: []fts.Hit{
		{NoteId: noteA.Id, Score: 3.0},
		{NoteId: noteB.Id, Score: 1.5},
	}})

	// The readiness check passes but the provider fails during the request.
	env.provider.GenerateFunc = func(ctx context.Context, text string, taskType string) ([]float32, error) {
		return nil, &embedding.ProviderError{Provider: "mock", Err: errors.New("backend down")}
	}

	hybrid, err := svc.HybridSearch(ctx, env.userId, &dto.HybridSearchRequest{Query: "foo"})
	require.NoError(t, err)

	fullText, err := svc.FullTextSearch(ctx, env.userId, &dto.FullTextSearchRequest{Query: "foo"})
	require.NoError(t, err)

	assert.True(t, hybrid.Degraded)
	for _, r := range hybrid.Results {
		assert.Equal(t, "fts", r.SearchType)
	}
	assert.Equal(t, fullText, hybrid.Results)
}

func TestFullTextSearchNormalizesUnboundedScores(t *testing.T) {
	env := newTestEnv(t, 3)
	ctx := context.Background()

	noteA := env.createNote(t, "first", "content")
	noteB := env.createNote(t, "second", "content")
	svc := env.newSearchService(&stubFtsProvider{hits: []fts.Hit{
		{NoteId: noteA.Id, Score: 2.0},
		{NoteId: noteB.Id, Score: 1.0},
	}})

	res, err := svc.FullTextSearch(ctx, env.userId, &dto.FullTextSearchRequest{Query: "foo"})
	require.NoError(t, err)

	require.Len(t, res, 2)
	assert.InDelta(t, 1.0, res[0].Score, 1e-9)
	assert.InDelta(t, 0.5, res[1].Score, 1e-9)
}

func TestHybridSearchRejectsNegativeWeights(t *testing.T) {
	env := newTestEnv(t, 3)
	svc := env.newSearchService(&stubFtsProvider{})

	bad := -0.1
	_, err := svc.HybridSearch(context.Background(), env.userId, &dto.HybridSearchRequest{
		Query:   "foo",
		Weights: &dto.SearchWeights{Fts: &bad},
	})
	require.Error(t, err)

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, serverutils.KindValidation, appErr.Kind)
}

func TestSemanticSearchReturnsDistance(t *testing.T) {
	env := newTestEnv(t, 3)
	ctx := context.Background()

	note := env.createNote(t, "semantic", "content")
	env.provider.GenerateFunc = func(ctx context.Context, text string, taskType string) ([]float32, error) {
		return []float32{1, 0, 0}, nil
	}
	env.storeVector(t, note.Id, []float32{0.6, 0.8, 0})

	svc := env.newSearchService(&stubFtsProvider{})

	res, err := svc.SemanticSearch(ctx, env.userId, &dto.SemanticSearchRequest{Query: "foo"})
	require.NoError(t, err)

	require.Len(t, res, 1)
	assert.Equal(t, note.Id, res[0].NoteId)
	assert.Equal(t, "semantic", res[0].Title)
	assert.InDelta(t, 0.4, res[0].Distance, 1e-6)
}

func TestHybridSearchScopedToUser(t *testing.T) {
	env := newTestEnv(t, 3)
	ctx := context.Background()

	note := env.createNote(t, "mine", "content")
	svc := env.newSearchService(&stubFtsProvider{hits: []fts.Hit{{NoteId: note.Id, Score: 0.8}}})

	otherUser := uuid.New()
	res, err := svc.HybridSearch(ctx, otherUser, &dto.HybridSearchRequest{Query: "foo"})
	require.NoError(t, err)
	assert.Empty(t, res.Results)
}
