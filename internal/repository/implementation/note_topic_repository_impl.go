package implementation

import (
	"context"

	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/model"
	"knowledgebase-engine/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NoteTopicRepositoryImpl struct {
	db *gorm.DB
}

func NewNoteTopicRepository(db *gorm.DB) contract.NoteTopicRepository {
	return &NoteTopicRepositoryImpl{db: db}
}

func (r *NoteTopicRepositoryImpl) ReplaceForNote(ctx context.Context, noteId uuid.UUID, assignments []*entity.NoteTopic) ([]uuid.UUID, error) {
	affected := make(map[uuid.UUID]struct{})

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old []model.NoteTopic
		if err := tx.Where("note_id = ?", noteId).Find(&old).Error; err != nil {
			return err
		}
		for _, a := range old {
			affected[a.TopicId] = struct{}{}
		}

		if err := tx.Where("note_id = ?", noteId).Delete(&model.NoteTopic{}).Error; err != nil {
			return err
		}

		if len(assignments) == 0 {
			return nil
		}

		rows := make([]model.NoteTopic, len(assignments))
		for i, a := range assignments {
			rows[i] = model.NoteTopic{
				Id:         a.Id,
				NoteId:     a.NoteId,
				TopicId:    a.TopicId,
				Confidence: a.Confidence,
				CreatedAt:  a.CreatedAt,
			}
			affected[a.TopicId] = struct{}{}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return nil, err
	}

	return topicIdSet(affected), nil
}

func (r *NoteTopicRepositoryImpl) DeleteByNoteId(ctx context.Context, noteId uuid.UUID) ([]uuid.UUID, error) {
	var old []model.NoteTopic
	if err := r.db.WithContext(ctx).Where("note_id = ?", noteId).Find(&old).Error; err != nil {
		return nil, err
	}

	affected := make(map[uuid.UUID]struct{})
	for _, a := range old {
		affected[a.TopicId] = struct{}{}
	}

	if err := r.db.WithContext(ctx).Where("note_id = ?", noteId).Delete(&model.NoteTopic{}).Error; err != nil {
		return nil, err
	}
	return topicIdSet(affected), nil
}

func (r *NoteTopicRepositoryImpl) DeleteByTopicId(ctx context.Context, topicId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("topic_id = ?", topicId).Delete(&model.NoteTopic{}).Error
}

func (r *NoteTopicRepositoryImpl) FindByNoteId(ctx context.Context, noteId uuid.UUID) ([]*entity.NoteTopic, error) {
	var rows []model.NoteTopic
	if err := r.db.WithContext(ctx).Where("note_id = ?", noteId).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toNoteTopicEntities(rows), nil
}

func (r *NoteTopicRepositoryImpl) FindByTopicId(ctx context.Context, topicId uuid.UUID) ([]*entity.NoteTopic, error) {
	var rows []model.NoteTopic
	if err := r.db.WithContext(ctx).Where("topic_id = ?", topicId).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toNoteTopicEntities(rows), nil
}

func toNoteTopicEntities(rows []model.NoteTopic) []*entity.NoteTopic {
	entities := make([]*entity.NoteTopic, len(rows))
	for i, row := range rows {
		entities[i] = &entity.NoteTopic{
			Id:         row.Id,
			NoteId:     row.NoteId,
			TopicId:    row.TopicId,
			Confidence: row.Confidence,
			CreatedAt:  row.CreatedAt,
		}
	}
	return entities
}

func topicIdSet(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}
