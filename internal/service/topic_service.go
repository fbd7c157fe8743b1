package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"knowledgebase-engine/internal/dto"
	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/pkg/logger"
	"knowledgebase-engine/internal/pkg/serverutils"
	"knowledgebase-engine/internal/repository/specification"
	"knowledgebase-engine/internal/repository/unitofwork"
	"knowledgebase-engine/pkg/embedding"
	"knowledgebase-engine/pkg/events"
	"knowledgebase-engine/pkg/vectormath"

	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
)

type ITopicService interface {
	Create(ctx context.Context, req *dto.CreateTopicRequest) (*dto.CreateTopicResponse, error)
	List(ctx context.Context) ([]dto.ShowTopicResponse, error)

	// ClassifyNote scores the note's embedding against every topic centroid
	// and replaces the note's assignment set with the winners. The note must
	// belong to userId. Returns ErrEmbeddingNotFound when the note has not
	// been embedded.
	ClassifyNote(ctx context.Context, userId uuid.UUID, noteId uuid.UUID) ([]dto.NoteTopicResponse, error)

	// RecomputeCentroids refreshes every topic centroid from the current
	// assignment set. Empty predefined topics keep their row with a nil
	// centroid; empty auto-discovered topics are pruned.
	RecomputeCentroids(ctx context.Context) error

	FindSimilarNotes(ctx context.Context, userId uuid.UUID, noteId uuid.UUID, limit int) ([]dto.SimilarNoteResult, error)

	// MarkDirty queues topics for the next background recompute pass.
	MarkDirty(topicIds ...uuid.UUID)

	// StartRecomputeLoop drains the dirty set on an interval until ctx is
	// cancelled. Recomputes run on the worker pool, one task per topic.
	StartRecomputeLoop(ctx context.Context)
}

type TopicServiceConfig struct {
	MinSimilarity  float64
	TopK           int
	DrainInterval  time.Duration
	WorkerPoolSize int
}

type topicService struct {
	uowFactory     unitofwork.RepositoryFactory
	state          *embedding.ProviderState
	eventPublisher EventPublisher
	cfg            TopicServiceConfig
	log            logger.ILogger

	dirtyMu sync.Mutex
	dirty   map[uuid.UUID]struct{}
}

func NewTopicService(
	uowFactory unitofwork.RepositoryFactory,
	state *embedding.ProviderState,
	eventPublisher EventPublisher,
	cfg TopicServiceConfig,
	log logger.ILogger,
) ITopicService {
	if cfg.MinSimilarity <= 0 {
		cfg.MinSimilarity = 0.35
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.DrainInterval <= 0 {
		cfg.DrainInterval = 15 * time.Second
	}
	if cfg.WorkerPoolSize <= 0 {
		cfg.WorkerPoolSize = 4
	}
	return &topicService{
		uowFactory:     uowFactory,
		state:          state,
		eventPublisher: eventPublisher,
		cfg:            cfg,
		log:            log,
		dirty:          make(map[uuid.UUID]struct{}),
	}
}

func (s *topicService) Create(ctx context.Context, req *dto.CreateTopicRequest) (*dto.CreateTopicResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	existing, err := uow.TopicRepository().FindOne(ctx, specification.TopicByName{Name: req.Name})
	if err != nil {
		return nil, serverutils.NewPersistenceError("failed to check topic name", err)
	}
	if existing != nil {
		return nil, serverutils.NewValidationError("topic name already exists")
	}

	topic := entity.Topic{
		Id:           uuid.New(),
		Name:         req.Name,
		Description:  req.Description,
		Color:        req.Color,
		Keywords:     req.Keywords,
		IsPredefined: req.IsPredefined,
		CreatedAt:    time.Now(),
	}
	if err := uow.TopicRepository().Create(ctx, &topic); err != nil {
		return nil, serverutils.NewPersistenceError("failed to create topic", err)
	}

	return &dto.CreateTopicResponse{Id: topic.Id}, nil
}

func (s *topicService) List(ctx context.Context) ([]dto.ShowTopicResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	topics, err := uow.TopicRepository().FindAll(ctx)
	if err != nil {
		return nil, serverutils.NewPersistenceError("failed to list topics", err)
	}

	res := make([]dto.ShowTopicResponse, 0, len(topics))
	for _, t := range topics {
		res = append(res, dto.ShowTopicResponse{
			Id:           t.Id,
			Name:         t.Name,
			Description:  t.Description,
			Color:        t.Color,
			Keywords:     t.Keywords,
			IsPredefined: t.IsPredefined,
			NoteCount:    t.NoteCount,
			HasCentroid:  t.Centroid != nil,
			CreatedAt:    t.CreatedAt,
		})
	}
	return res, nil
}

func (s *topicService) ClassifyNote(ctx context.Context, userId uuid.UUID, noteId uuid.UUID) ([]dto.NoteTopicResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: noteId}, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, serverutils.NewPersistenceError("failed to load note", err)
	}
	if note == nil || note.IsDeleted {
		return nil, serverutils.NewNotFoundError("note not found")
	}

	emb, err := uow.NoteEmbeddingRepository().FindByNoteId(ctx, noteId, s.state.Model())
	if err != nil {
		return nil, serverutils.NewPersistenceError("failed to load embedding", err)
	}
	if emb == nil {
		return nil, ErrEmbeddingNotFound
	}

	// FindAll returns creation order; stable sort below preserves it as the
	// tie-break for equal confidence.
	topics, err := uow.TopicRepository().FindAll(ctx)
	if err != nil {
		return nil, serverutils.NewPersistenceError("failed to load topics", err)
	}

	type candidate struct {
		topic      *entity.Topic
		confidence float32
	}
	var candidates []candidate
	for _, topic := range topics {
		if topic.Centroid == nil {
			continue
		}
		sim, err := vectormath.CosineSimilarity(emb.Vector, topic.Centroid)
		if err != nil {
			return nil, err
		}
		if float64(sim) < s.cfg.MinSimilarity {
			continue
		}
		confidence := sim
		if confidence < 0 {
			confidence = 0
		}
		candidates = append(candidates, candidate{topic: topic, confidence: confidence})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].confidence > candidates[j].confidence
	})
	if len(candidates) > s.cfg.TopK {
		candidates = candidates[:s.cfg.TopK]
	}

	now := time.Now()
	assignments := make([]*entity.NoteTopic, 0, len(candidates))
	responses := make([]dto.NoteTopicResponse, 0, len(candidates))
	for _, c := range candidates {
		assignments = append(assignments, &entity.NoteTopic{
			Id:         uuid.New(),
			NoteId:     noteId,
			TopicId:    c.topic.Id,
			Confidence: c.confidence,
			CreatedAt:  now,
		})
		responses = append(responses, dto.NoteTopicResponse{
			TopicId:    c.topic.Id,
			Name:       c.topic.Name,
			Confidence: c.confidence,
		})
	}

	affected, err := uow.NoteTopicRepository().ReplaceForNote(ctx, noteId, assignments)
	if err != nil {
		return nil, serverutils.NewPersistenceError("failed to store topic assignments", err)
	}
	if len(affected) > 0 {
		s.MarkDirty(affected...)
	}

	if s.eventPublisher != nil {
		topicIds := make([]uuid.UUID, 0, len(assignments))
		for _, a := range assignments {
			topicIds = append(topicIds, a.TopicId)
		}
		if err := s.eventPublisher.Publish(ctx, events.NoteClassified(noteId, topicIds)); err != nil {
			s.log.Warn("topic", "failed to publish classification event", map[string]interface{}{"error": err.Error()})
		}
	}

	return responses, nil
}

func (s *topicService) RecomputeCentroids(ctx context.Context) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	topics, err := uow.TopicRepository().FindAll(ctx)
	if err != nil {
		return serverutils.NewPersistenceError("failed to load topics", err)
	}

	recomputed := make([]uuid.UUID, 0, len(topics))
	for _, topic := range topics {
		if err := s.recomputeTopic(ctx, topic.Id); err != nil {
			return err
		}
		recomputed = append(recomputed, topic.Id)
	}

	if s.eventPublisher != nil && len(recomputed) > 0 {
		if err := s.eventPublisher.Publish(ctx, events.TopicsRecomputed(recomputed)); err != nil {
			s.log.Warn("topic", "failed to publish recompute event", map[string]interface{}{"error": err.Error()})
		}
	}
	return nil
}

// recomputeTopic rebuilds one topic's centroid from a snapshot of its
// current assignments. The swap is a single atomic write; readers see either
// the old centroid or the new one, never a partial vector.
func (s *topicService) recomputeTopic(ctx context.Context, topicId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	topic, err := uow.TopicRepository().FindOne(ctx, specification.ByID{ID: topicId})
	if err != nil {
		return serverutils.NewPersistenceError("failed to load topic", err)
	}
	if topic == nil {
		return nil
	}

	assignments, err := uow.NoteTopicRepository().FindByTopicId(ctx, topicId)
	if err != nil {
		return serverutils.NewPersistenceError("failed to load topic assignments", err)
	}

	noteIds := make([]uuid.UUID, 0, len(assignments))
	for _, a := range assignments {
		noteIds = append(noteIds, a.NoteId)
	}

	var embs []*entity.NoteEmbedding
	if len(noteIds) > 0 {
		embs, err = uow.NoteEmbeddingRepository().FindByNoteIds(ctx, noteIds, s.state.Model())
		if err != nil {
			return serverutils.NewPersistenceError("failed to load member embeddings", err)
		}
	}

	if len(embs) == 0 {
		if topic.IsPredefined {
			if err := uow.TopicRepository().SwapCentroid(ctx, topicId, nil, 0); err != nil {
				return serverutils.NewPersistenceError("failed to clear centroid", err)
			}
			return nil
		}
		// Auto-discovered topic with no members left: prune it.
		if err := uow.NoteTopicRepository().DeleteByTopicId(ctx, topicId); err != nil {
			return serverutils.NewPersistenceError("failed to prune topic assignments", err)
		}
		if err := uow.TopicRepository().Delete(ctx, topicId); err != nil {
			return serverutils.NewPersistenceError("failed to prune topic", err)
		}
		s.log.Info("topic", "pruned empty topic", map[string]interface{}{"topic_id": topicId.String()})
		return nil
	}

	vectors := make([][]float32, 0, len(embs))
	for _, e := range embs {
		vectors = append(vectors, e.Vector)
	}
	centroid, err := vectormath.Centroid(vectors)
	if err != nil {
		return err
	}

	if err := uow.TopicRepository().SwapCentroid(ctx, topicId, centroid, len(embs)); err != nil {
		return serverutils.NewPersistenceError("failed to swap centroid", err)
	}
	return nil
}

func (s *topicService) FindSimilarNotes(ctx context.Context, userId uuid.UUID, noteId uuid.UUID, limit int) ([]dto.SimilarNoteResult, error) {
	if limit <= 0 {
		limit = 10
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	emb, err := uow.NoteEmbeddingRepository().FindByNoteId(ctx, noteId, s.state.Model())
	if err != nil {
		return nil, serverutils.NewPersistenceError("failed to load embedding", err)
	}
	if emb == nil {
		return nil, ErrEmbeddingNotFound
	}

	// One extra so the note itself can be dropped from its own results.
	scored, err := uow.NoteEmbeddingRepository().SearchSimilarWithScore(ctx, emb.Vector, s.state.Model(), limit+1, userId, -1)
	if err != nil {
		return nil, serverutils.NewPersistenceError("similarity search failed", err)
	}

	noteIds := make([]uuid.UUID, 0, len(scored))
	for _, sc := range scored {
		if sc.Embedding.NoteId == noteId {
			continue
		}
		noteIds = append(noteIds, sc.Embedding.NoteId)
	}
	if len(noteIds) == 0 {
		return []dto.SimilarNoteResult{}, nil
	}

	notes, err := uow.NoteRepository().FindAll(ctx, specification.ByIDs{IDs: noteIds}, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, serverutils.NewPersistenceError("failed to load notes", err)
	}
	noteById := make(map[uuid.UUID]*entity.Note, len(notes))
	for _, n := range notes {
		noteById[n.Id] = n
	}

	results := make([]dto.SimilarNoteResult, 0, len(scored))
	for _, sc := range scored {
		if sc.Embedding.NoteId == noteId {
			continue
		}
		note, ok := noteById[sc.Embedding.NoteId]
		if !ok || note.IsDeleted {
			continue
		}
		results = append(results, dto.SimilarNoteResult{
			NoteId:     note.Id,
			Title:      note.Title,
			Similarity: sc.Similarity,
			UpdatedAt:  note.UpdatedAt,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		return laterUpdated(results[i].UpdatedAt, results[j].UpdatedAt)
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *topicService) MarkDirty(topicIds ...uuid.UUID) {
	s.dirtyMu.Lock()
	defer s.dirtyMu.Unlock()
	for _, id := range topicIds {
		s.dirty[id] = struct{}{}
	}
}

func (s *topicService) StartRecomputeLoop(ctx context.Context) {
	pool, err := ants.NewPool(s.cfg.WorkerPoolSize)
	if err != nil {
		s.log.Error("topic", "failed to create recompute pool", map[string]interface{}{"error": err.Error()})
		return
	}

	go func() {
		defer pool.Release()

		ticker := time.NewTicker(s.cfg.DrainInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.drainDirty(ctx, pool)
			}
		}
	}()
}

func (s *topicService) drainDirty(ctx context.Context, pool *ants.Pool) {
	s.dirtyMu.Lock()
	if len(s.dirty) == 0 {
		s.dirtyMu.Unlock()
		return
	}
	batch := make([]uuid.UUID, 0, len(s.dirty))
	for id := range s.dirty {
		batch = append(batch, id)
	}
	s.dirty = make(map[uuid.UUID]struct{})
	s.dirtyMu.Unlock()

	var wg sync.WaitGroup
	for _, id := range batch {
		topicId := id
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := s.recomputeTopic(ctx, topicId); err != nil {
				s.log.Error("topic", "centroid recompute failed", map[string]interface{}{
					"topic_id": topicId.String(),
					"error":    err.Error(),
				})
				// Keep it dirty so a later pass retries.
				s.MarkDirty(topicId)
			}
		})
		if submitErr != nil {
			wg.Done()
			s.MarkDirty(topicId)
		}
	}
	wg.Wait()

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, events.TopicsRecomputed(batch)); err != nil {
			s.log.Warn("topic", "failed to publish recompute event", map[string]interface{}{"error": err.Error()})
		}
	}
}

func laterUpdated(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
