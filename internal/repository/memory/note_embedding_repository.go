package memory

import (
	"context"
	"sort"

	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/repository/contract"
	"knowledgebase-engine/pkg/vectormath"

	"github.com/google/uuid"
)

type noteEmbeddingRepository struct {
	store *Store
}

func (r *noteEmbeddingRepository) Upsert(ctx context.Context, embedding *entity.NoteEmbedding) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	byModel, ok := r.store.embeddings[embedding.NoteId]
	if !ok {
		byModel = make(map[string]*entity.NoteEmbedding)
		r.store.embeddings[embedding.NoteId] = byModel
	}
	copied := *embedding
	copied.Vector = append([]float32(nil), embedding.Vector...)
	byModel[embedding.Model] = &copied
	return nil
}

func (r *noteEmbeddingRepository) DeleteByNoteId(ctx context.Context, noteId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.embeddings, noteId)
	return nil
}

func (r *noteEmbeddingRepository) FindByNoteId(ctx context.Context, noteId uuid.UUID, model string) (*entity.NoteEmbedding, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	byModel, ok := r.store.embeddings[noteId]
	if !ok {
		return nil, nil
	}
	emb, ok := byModel[model]
	if !ok {
		return nil, nil
	}
	copied := *emb
	return &copied, nil
}

func (r *noteEmbeddingRepository) FindAllByModel(ctx context.Context, model string) ([]*entity.NoteEmbedding, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*entity.NoteEmbedding
	for _, byModel := range r.store.embeddings {
		if emb, ok := byModel[model]; ok {
			copied := *emb
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *noteEmbeddingRepository) FindByNoteIds(ctx context.Context, noteIds []uuid.UUID, model string) ([]*entity.NoteEmbedding, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*entity.NoteEmbedding
	for _, id := range noteIds {
		if byModel, ok := r.store.embeddings[id]; ok {
			if emb, ok := byModel[model]; ok {
				copied := *emb
				result = append(result, &copied)
			}
		}
	}
	return result, nil
}

func (r *noteEmbeddingRepository) CountByModel(ctx context.Context, model string) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var count int64
	for _, byModel := range r.store.embeddings {
		if _, ok := byModel[model]; ok {
			count++
		}
	}
	return count, nil
}

func (r *noteEmbeddingRepository) SearchSimilarWithScore(ctx context.Context, vector []float32, model string, limit int, userId uuid.UUID, threshold float64) ([]*contract.ScoredNoteEmbedding, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}

	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var scored []*contract.ScoredNoteEmbedding
	for noteId, byModel := range r.store.embeddings {
		emb, ok := byModel[model]
		if !ok {
			continue
		}
		note, ok := r.store.notes[noteId]
		if !ok || note.UserId != userId {
			continue
		}

		sim, err := vectormath.CosineSimilarity(vector, emb.Vector)
		if err != nil {
			return nil, err
		}
		if float64(sim) < threshold {
			continue
		}

		copied := *emb
		scored = append(scored, &contract.ScoredNoteEmbedding{
			Embedding:  &copied,
			Similarity: float64(sim),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Embedding.NoteId.String() < scored[j].Embedding.NoteId.String()
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}
