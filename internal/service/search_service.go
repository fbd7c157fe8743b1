package service

import (
	"context"
	"errors"
	"sort"
	"sync"

	"knowledgebase-engine/internal/dto"
	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/pkg/logger"
	"knowledgebase-engine/internal/pkg/serverutils"
	"knowledgebase-engine/internal/repository/contract"
	"knowledgebase-engine/internal/repository/specification"
	"knowledgebase-engine/internal/repository/unitofwork"
	"knowledgebase-engine/pkg/cache"
	"knowledgebase-engine/pkg/embedding"
	"knowledgebase-engine/pkg/fts"

	"github.com/google/uuid"
)

const defaultSearchLimit = 20

const (
	searchTypeFts      = "fts"
	searchTypeSemantic = "semantic"
	searchTypeHybrid   = "hybrid"
)

type ISearchService interface {
	// HybridSearch merges lexical and semantic results per note. When the
	// embedding provider is not ready, or fails mid-request, it degrades to
	// lexical-only results instead of failing.
	HybridSearch(ctx context.Context, userId uuid.UUID, req *dto.HybridSearchRequest) (*dto.HybridSearchResponse, error)

	SemanticSearch(ctx context.Context, userId uuid.UUID, req *dto.SemanticSearchRequest) ([]dto.SemanticSearchResult, error)

	FullTextSearch(ctx context.Context, userId uuid.UUID, req *dto.FullTextSearchRequest) ([]dto.HybridSearchResult, error)
}

type SearchServiceConfig struct {
	FtsWeight      float64
	SemanticWeight float64
}

type searchService struct {
	uowFactory       unitofwork.RepositoryFactory
	ftsProvider      fts.Provider
	embeddingService IEmbeddingService
	state            *embedding.ProviderState
	queryCache       cache.QueryEmbeddingCache
	cfg              SearchServiceConfig
	log              logger.ILogger
}

func NewSearchService(
	uowFactory unitofwork.RepositoryFactory,
	ftsProvider fts.Provider,
	embeddingService IEmbeddingService,
	state *embedding.ProviderState,
	queryCache cache.QueryEmbeddingCache,
	cfg SearchServiceConfig,
	log logger.ILogger,
) ISearchService {
	if cfg.FtsWeight == 0 && cfg.SemanticWeight == 0 {
		cfg.FtsWeight = 0.5
		cfg.SemanticWeight = 0.5
	}
	if queryCache == nil {
		queryCache = cache.NoopQueryCache{}
	}
	return &searchService{
		uowFactory:       uowFactory,
		ftsProvider:      ftsProvider,
		embeddingService: embeddingService,
		state:            state,
		queryCache:       queryCache,
		cfg:              cfg,
		log:              log,
	}
}

func (s *searchService) HybridSearch(ctx context.Context, userId uuid.UUID, req *dto.HybridSearchRequest) (*dto.HybridSearchResponse, error) {
	ftsWeight, semanticWeight, err := s.resolveWeights(req.Weights)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	if !s.state.Ready() {
		results, err := s.FullTextSearch(ctx, userId, &dto.FullTextSearchRequest{Query: req.Query, Limit: limit})
		if err != nil {
			return nil, err
		}
		return &dto.HybridSearchResponse{Results: results, Degraded: true}, nil
	}

	var (
		wg       sync.WaitGroup
		hits     []fts.Hit
		lexErr   error
		scored   []*contract.ScoredNoteEmbedding
		semErr   error
		degraded bool
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		hits, lexErr = s.ftsProvider.Search(ctx, userId, req.Query, limit)
	}()
	go func() {
		defer wg.Done()
		scored, semErr = s.semanticBranch(ctx, userId, req.Query, limit)
	}()
	wg.Wait()

	if lexErr != nil {
		return nil, serverutils.NewPersistenceError("lexical search failed", lexErr)
	}

	var merged []mergedResult
	if semErr != nil {
		// Provider trouble degrades the search; repository trouble fails it.
		var provErr *embedding.ProviderError
		if !errors.Is(semErr, embedding.ErrProviderUnavailable) && !errors.As(semErr, &provErr) {
			return nil, serverutils.NewPersistenceError("semantic search failed", semErr)
		}
		s.log.Warn("search", "semantic branch degraded", map[string]interface{}{"error": semErr.Error()})
		degraded = true
		// Degraded results use the same lexical-only scoring as the
		// not-ready path, no weight applied.
		merged = lexicalOnly(hits)
	} else {
		merged = mergeResults(hits, scored, ftsWeight, semanticWeight)
	}

	results, err := s.hydrate(ctx, userId, merged, limit)
	if err != nil {
		return nil, err
	}
	return &dto.HybridSearchResponse{Results: results, Degraded: degraded}, nil
}

func (s *searchService) SemanticSearch(ctx context.Context, userId uuid.UUID, req *dto.SemanticSearchRequest) ([]dto.SemanticSearchResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	scored, err := s.semanticBranch(ctx, userId, req.Query, limit)
	if err != nil {
		return nil, err
	}

	noteIds := make([]uuid.UUID, 0, len(scored))
	for _, sc := range scored {
		noteIds = append(noteIds, sc.Embedding.NoteId)
	}
	notes, err := s.loadNotes(ctx, userId, noteIds)
	if err != nil {
		return nil, err
	}

	results := make([]dto.SemanticSearchResult, 0, len(scored))
	for _, sc := range scored {
		note, ok := notes[sc.Embedding.NoteId]
		if !ok || note.IsDeleted {
			continue
		}
		results = append(results, dto.SemanticSearchResult{
			NoteId:   note.Id,
			Title:    note.Title,
			Distance: 1 - sc.Similarity,
		})
	}
	return results, nil
}

func (s *searchService) FullTextSearch(ctx context.Context, userId uuid.UUID, req *dto.FullTextSearchRequest) ([]dto.HybridSearchResult, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	hits, err := s.ftsProvider.Search(ctx, userId, req.Query, limit)
	if err != nil {
		return nil, serverutils.NewPersistenceError("lexical search failed", err)
	}

	return s.hydrate(ctx, userId, lexicalOnly(hits), limit)
}

// semanticBranch embeds the query (cache first) and runs the vector search.
func (s *searchService) semanticBranch(ctx context.Context, userId uuid.UUID, query string, limit int) ([]*contract.ScoredNoteEmbedding, error) {
	model := s.state.Model()
	if model == "" {
		return nil, embedding.ErrProviderUnavailable
	}

	vector, ok := s.queryCache.Get(ctx, model, query)
	if !ok {
		var err error
		vector, err = s.embeddingService.Generate(ctx, query, embedding.TaskRetrievalQuery)
		if err != nil {
			return nil, err
		}
		s.queryCache.Set(ctx, model, query, vector)
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	return uow.NoteEmbeddingRepository().SearchSimilarWithScore(ctx, vector, model, limit, userId, -1)
}

type mergedResult struct {
	noteId     uuid.UUID
	score      float64
	searchType string
	lexRank    int // position in the lexical ranking; large when absent
}

const noLexRank = 1 << 30

// normalizeLexical maps unbounded engine scores into [0, 1] by dividing by
// the top hit. Scores already within [0, 1] pass through untouched.
func normalizeLexical(hits []fts.Hit) []fts.Hit {
	if len(hits) == 0 {
		return hits
	}
	top := hits[0].Score
	for _, h := range hits {
		if h.Score > top {
			top = h.Score
		}
	}
	if top <= 1 {
		return hits
	}
	out := make([]fts.Hit, len(hits))
	for i, h := range hits {
		out[i] = fts.Hit{NoteId: h.NoteId, Score: h.Score / top}
	}
	return out
}

// lexicalOnly scores hits with normalized lexical scores alone, for paths
// where the semantic branch cannot contribute.
func lexicalOnly(hits []fts.Hit) []mergedResult {
	normalized := normalizeLexical(hits)
	merged := make([]mergedResult, 0, len(normalized))
	for rank, hit := range normalized {
		merged = append(merged, mergedResult{
			noteId:     hit.NoteId,
			score:      hit.Score,
			searchType: searchTypeFts,
			lexRank:    rank,
		})
	}
	return merged
}

// mergeResults combines the two branches per note id. A missing component
// contributes zero; semantic similarity is mapped from [-1, 1] to [0, 1]
// before weighting.
func mergeResults(hits []fts.Hit, scored []*contract.ScoredNoteEmbedding, ftsWeight, semanticWeight float64) []mergedResult {
	normalized := normalizeLexical(hits)

	type parts struct {
		lex     float64
		sem     float64
		hasLex  bool
		hasSem  bool
		lexRank int
	}
	byNote := make(map[uuid.UUID]*parts)
	order := make([]uuid.UUID, 0, len(normalized)+len(scored))

	for rank, hit := range normalized {
		byNote[hit.NoteId] = &parts{lex: hit.Score, hasLex: true, lexRank: rank}
		order = append(order, hit.NoteId)
	}
	for _, sc := range scored {
		p, ok := byNote[sc.Embedding.NoteId]
		if !ok {
			p = &parts{lexRank: noLexRank}
			byNote[sc.Embedding.NoteId] = p
			order = append(order, sc.Embedding.NoteId)
		}
		p.sem = (sc.Similarity + 1) / 2
		p.hasSem = true
	}

	merged := make([]mergedResult, 0, len(order))
	for _, id := range order {
		p := byNote[id]
		searchType := searchTypeHybrid
		switch {
		case p.hasLex && !p.hasSem:
			searchType = searchTypeFts
		case p.hasSem && !p.hasLex:
			searchType = searchTypeSemantic
		}
		merged = append(merged, mergedResult{
			noteId:     id,
			score:      ftsWeight*p.lex + semanticWeight*p.sem,
			searchType: searchType,
			lexRank:    p.lexRank,
		})
	}
	return merged
}

// hydrate resolves note rows, applies the final ordering and truncates to
// limit. Ties break by lexical rank, then most recently updated first.
func (s *searchService) hydrate(ctx context.Context, userId uuid.UUID, merged []mergedResult, limit int) ([]dto.HybridSearchResult, error) {
	if len(merged) == 0 {
		return []dto.HybridSearchResult{}, nil
	}

	noteIds := make([]uuid.UUID, 0, len(merged))
	for _, m := range merged {
		noteIds = append(noteIds, m.noteId)
	}
	notes, err := s.loadNotes(ctx, userId, noteIds)
	if err != nil {
		return nil, err
	}

	type scoredNote struct {
		mergedResult
		note *entity.Note
	}
	rows := make([]scoredNote, 0, len(merged))
	for _, m := range merged {
		note, ok := notes[m.noteId]
		if !ok || note.IsDeleted {
			continue
		}
		rows = append(rows, scoredNote{mergedResult: m, note: note})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].score != rows[j].score {
			return rows[i].score > rows[j].score
		}
		if rows[i].lexRank != rows[j].lexRank {
			return rows[i].lexRank < rows[j].lexRank
		}
		return laterUpdated(rows[i].note.UpdatedAt, rows[j].note.UpdatedAt)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	results := make([]dto.HybridSearchResult, 0, len(rows))
	for _, r := range rows {
		results = append(results, dto.HybridSearchResult{
			Id:         r.note.Id,
			Title:      r.note.Title,
			Content:    r.note.Content,
			Score:      r.score,
			SearchType: r.searchType,
			CreatedAt:  r.note.CreatedAt,
			UpdatedAt:  r.note.UpdatedAt,
		})
	}
	return results, nil
}

func (s *searchService) loadNotes(ctx context.Context, userId uuid.UUID, noteIds []uuid.UUID) (map[uuid.UUID]*entity.Note, error) {
	if len(noteIds) == 0 {
		return map[uuid.UUID]*entity.Note{}, nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	notes, err := uow.NoteRepository().FindAll(ctx, specification.ByIDs{IDs: noteIds}, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, serverutils.NewPersistenceError("failed to load notes", err)
	}

	byId := make(map[uuid.UUID]*entity.Note, len(notes))
	for _, n := range notes {
		byId[n.Id] = n
	}
	return byId, nil
}

func (s *searchService) resolveWeights(weights *dto.SearchWeights) (float64, float64, error) {
	ftsWeight := s.cfg.FtsWeight
	semanticWeight := s.cfg.SemanticWeight

	if weights != nil {
		if weights.Fts != nil {
			ftsWeight = *weights.Fts
		}
		if weights.Semantic != nil {
			semanticWeight = *weights.Semantic
		}
	}

	if ftsWeight < 0 || semanticWeight < 0 {
		return 0, 0, serverutils.NewValidationError("search weights must not be negative")
	}
	return ftsWeight, semanticWeight, nil
}
