package service

import (
	"context"
	"time"

	"knowledgebase-engine/internal/dto"
	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/pkg/logger"
	"knowledgebase-engine/internal/pkg/serverutils"
	"knowledgebase-engine/internal/repository/specification"
	"knowledgebase-engine/internal/repository/unitofwork"
	"knowledgebase-engine/pkg/embedding"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// ErrEmbeddingNotFound is returned when an operation needs a note's vector
// and the note has not been embedded yet. It carries the not-found kind, so
// the HTTP layer answers 404.
var ErrEmbeddingNotFound error = serverutils.NewNotFoundError("embedding not found for note")

const statusCacheKey = "embedding_status:"

type IEmbeddingService interface {
	// Generate turns text into a vector via the active provider. Returns
	// embedding.ErrProviderUnavailable when no provider is ready.
	Generate(ctx context.Context, text string, taskType string) ([]float32, error)

	// Store upserts the note's vector, replacing any prior one for the
	// active model. Rejects vectors whose length differs from the model's
	// declared dimensionality.
	Store(ctx context.Context, noteId uuid.UUID, vector []float32, contentHash string) error

	// Get returns the note's stored embedding or ErrEmbeddingNotFound.
	Get(ctx context.Context, noteId uuid.UUID) (*entity.NoteEmbedding, error)

	// Delete removes the note's embedding and its topic assignments, and
	// marks the affected topics for centroid recomputation. The note must
	// belong to userId.
	Delete(ctx context.Context, userId uuid.UUID, noteId uuid.UUID) error

	GetStatus(ctx context.Context, userId uuid.UUID) (*dto.EmbeddingStatusResponse, error)
}

type embeddingService struct {
	uowFactory   unitofwork.RepositoryFactory
	provider     embedding.Provider
	state        *embedding.ProviderState
	topicService ITopicService
	statusCache  *gocache.Cache
	embedTimeout time.Duration
	log          logger.ILogger
}

func NewEmbeddingService(
	uowFactory unitofwork.RepositoryFactory,
	provider embedding.Provider,
	state *embedding.ProviderState,
	topicService ITopicService,
	embedTimeout time.Duration,
	log logger.ILogger,
) IEmbeddingService {
	if embedTimeout <= 0 {
		embedTimeout = 30 * time.Second
	}
	return &embeddingService{
		uowFactory:   uowFactory,
		provider:     provider,
		state:        state,
		topicService: topicService,
		statusCache:  gocache.New(15*time.Second, time.Minute),
		embedTimeout: embedTimeout,
		log:          log,
	}
}

func (s *embeddingService) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	if !s.state.Ready() {
		return nil, embedding.ErrProviderUnavailable
	}

	genCtx, cancel := context.WithTimeout(ctx, s.embedTimeout)
	defer cancel()

	vector, err := s.provider.Generate(genCtx, text, taskType)
	if err != nil {
		s.state.RecordFailure(err)
		return nil, err
	}
	return vector, nil
}

func (s *embeddingService) Store(ctx context.Context, noteId uuid.UUID, vector []float32, contentHash string) error {
	dims := s.state.Dimensions()
	if dims == 0 {
		return embedding.ErrProviderUnavailable
	}
	if len(vector) != dims {
		return serverutils.NewValidationError("vector dimensionality does not match the active model")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()
	err := uow.NoteEmbeddingRepository().Upsert(ctx, &entity.NoteEmbedding{
		Id:          uuid.New(),
		NoteId:      noteId,
		Vector:      vector,
		Model:       s.state.Model(),
		Dimensions:  dims,
		ContentHash: contentHash,
		CreatedAt:   now,
		UpdatedAt:   &now,
	})
	if err != nil {
		return serverutils.NewPersistenceError("failed to store embedding", err)
	}

	s.statusCache.Flush()
	return nil
}

func (s *embeddingService) Get(ctx context.Context, noteId uuid.UUID) (*entity.NoteEmbedding, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	emb, err := uow.NoteEmbeddingRepository().FindByNoteId(ctx, noteId, s.state.Model())
	if err != nil {
		return nil, serverutils.NewPersistenceError("failed to load embedding", err)
	}
	if emb == nil {
		return nil, ErrEmbeddingNotFound
	}
	return emb, nil
}

func (s *embeddingService) Delete(ctx context.Context, userId uuid.UUID, noteId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId}, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return serverutils.NewPersistenceError("failed to load note", err)
	}
	if note == nil || note.IsDeleted {
		return serverutils.NewNotFoundError("note not found")
	}

	if err := uow.Begin(ctx); err != nil {
		return serverutils.NewPersistenceError("failed to begin transaction", err)
	}

	if err := uow.NoteEmbeddingRepository().DeleteByNoteId(ctx, noteId); err != nil {
		uow.Rollback()
		return serverutils.NewPersistenceError("failed to delete embedding", err)
	}

	affected, err := uow.NoteTopicRepository().DeleteByNoteId(ctx, noteId)
	if err != nil {
		uow.Rollback()
		return serverutils.NewPersistenceError("failed to delete topic assignments", err)
	}

	if err := uow.Commit(); err != nil {
		return serverutils.NewPersistenceError("failed to commit embedding deletion", err)
	}

	if len(affected) > 0 {
		s.topicService.MarkDirty(affected...)
	}

	s.statusCache.Flush()
	return nil
}

func (s *embeddingService) GetStatus(ctx context.Context, userId uuid.UUID) (*dto.EmbeddingStatusResponse, error) {
	key := statusCacheKey + userId.String()
	if cached, ok := s.statusCache.Get(key); ok {
		status := cached.(dto.EmbeddingStatusResponse)
		return &status, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	notes, err := uow.NoteRepository().FindAll(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, serverutils.NewPersistenceError("failed to count notes", err)
	}

	noteIds := make([]uuid.UUID, 0, len(notes))
	for _, n := range notes {
		if n.IsDeleted {
			continue
		}
		noteIds = append(noteIds, n.Id)
	}

	model := s.state.Model()
	var embedded int64
	if len(noteIds) > 0 && model != "" {
		embs, err := uow.NoteEmbeddingRepository().FindByNoteIds(ctx, noteIds, model)
		if err != nil {
			return nil, serverutils.NewPersistenceError("failed to count embeddings", err)
		}
		embedded = int64(len(embs))
	}

	total := int64(len(noteIds))
	status := dto.EmbeddingStatusResponse{
		Ready:    s.state.Ready(),
		Model:    model,
		Embedded: embedded,
		Pending:  total - embedded,
		Total:    total,
	}

	s.statusCache.Set(key, status, gocache.DefaultExpiration)
	return &status, nil
}
