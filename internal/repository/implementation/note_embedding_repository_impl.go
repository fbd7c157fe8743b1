package implementation

import (
	"context"
	"errors"

	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/mapper"
	"knowledgebase-engine/internal/model"
	"knowledgebase-engine/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type NoteEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteEmbeddingMapper
}

func NewNoteEmbeddingRepository(db *gorm.DB) contract.NoteEmbeddingRepository {
	return &NoteEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteEmbeddingMapper(),
	}
}

func (r *NoteEmbeddingRepositoryImpl) Upsert(ctx context.Context, embedding *entity.NoteEmbedding) error {
	m := r.mapper.ToModel(embedding)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "note_id"}, {Name: "model"}},
			DoUpdates: clause.AssignmentColumns([]string{"vector", "dimensions", "content_hash", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteEmbeddingRepositoryImpl) DeleteByNoteId(ctx context.Context, noteId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("note_id = ?", noteId).Delete(&model.NoteEmbedding{}).Error
}

func (r *NoteEmbeddingRepositoryImpl) FindByNoteId(ctx context.Context, noteId uuid.UUID, embModel string) (*entity.NoteEmbedding, error) {
	var m model.NoteEmbedding
	err := r.db.WithContext(ctx).
		Where("note_id = ? AND model = ?", noteId, embModel).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *NoteEmbeddingRepositoryImpl) FindAllByModel(ctx context.Context, embModel string) ([]*entity.NoteEmbedding, error) {
	var models []*model.NoteEmbedding
	err := r.db.WithContext(ctx).
		Where("model = ?", embModel).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteEmbeddingRepositoryImpl) FindByNoteIds(ctx context.Context, noteIds []uuid.UUID, embModel string) ([]*entity.NoteEmbedding, error) {
	var models []*model.NoteEmbedding
	err := r.db.WithContext(ctx).
		Where("note_id IN ? AND model = ?", noteIds, embModel).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *NoteEmbeddingRepositoryImpl) CountByModel(ctx context.Context, embModel string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.NoteEmbedding{}).
		Where("model = ?", embModel).
		Distinct("note_id").
		Count(&count).Error
	return count, err
}

// SearchSimilarWithScore ranks stored embeddings by cosine similarity to the
// query vector. pgvector's <=> operator is cosine distance, so similarity is
// 1 - distance.
func (r *NoteEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, vector []float32, embModel string, limit int, userId uuid.UUID, threshold float64) ([]*contract.ScoredNoteEmbedding, error) {
	if limit <= 0 {
		limit = 10
	}

	type result struct {
		model.NoteEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(vector)

	err := r.db.WithContext(ctx).
		Table("note_embeddings").
		Select("note_embeddings.*, 1 - (note_embeddings.vector <=> ?) as similarity", queryVector).
		Joins("JOIN notes ON notes.id = note_embeddings.note_id").
		Where("notes.user_id = ?", userId).
		Where("notes.deleted_at IS NULL").
		Where("note_embeddings.model = ?", embModel).
		Where("1 - (note_embeddings.vector <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredNoteEmbedding, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredNoteEmbedding{
			Embedding:  r.mapper.ToEntity(&res.NoteEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scored, nil
}
