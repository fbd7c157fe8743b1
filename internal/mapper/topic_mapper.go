package mapper

import (
	"encoding/json"
	"time"

	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type TopicMapper struct{}

func NewTopicMapper() *TopicMapper {
	return &TopicMapper{}
}

func (m *TopicMapper) ToEntity(t *model.Topic) *entity.Topic {
	if t == nil {
		return nil
	}

	var keywords []string
	if len(t.Keywords) > 0 {
		// Malformed rows degrade to no keywords rather than failing the read.
		_ = json.Unmarshal(t.Keywords, &keywords)
	}

	var centroid []float32
	if t.Centroid != nil {
		centroid = t.Centroid.Slice()
	}

	var updatedAt *time.Time
	if !t.UpdatedAt.IsZero() {
		ts := t.UpdatedAt
		updatedAt = &ts
	}

	return &entity.Topic{
		Id:           t.Id,
		Name:         t.Name,
		Description:  t.Description,
		Color:        t.Color,
		Keywords:     keywords,
		IsPredefined: t.IsPredefined,
		Centroid:     centroid,
		NoteCount:    t.NoteCount,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *TopicMapper) ToModel(t *entity.Topic) *model.Topic {
	if t == nil {
		return nil
	}

	var keywords datatypes.JSON
	if len(t.Keywords) > 0 {
		raw, err := json.Marshal(t.Keywords)
		if err == nil {
			keywords = raw
		}
	}

	var centroid *pgvector.Vector
	if t.Centroid != nil {
		v := pgvector.NewVector(t.Centroid)
		centroid = &v
	}

	var updatedAt time.Time
	if t.UpdatedAt != nil {
		updatedAt = *t.UpdatedAt
	}

	return &model.Topic{
		Id:           t.Id,
		Name:         t.Name,
		Description:  t.Description,
		Color:        t.Color,
		Keywords:     keywords,
		IsPredefined: t.IsPredefined,
		Centroid:     centroid,
		NoteCount:    t.NoteCount,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    updatedAt,
	}
}

func (m *TopicMapper) ToEntities(topics []*model.Topic) []*entity.Topic {
	entities := make([]*entity.Topic, len(topics))
	for i, t := range topics {
		entities[i] = m.ToEntity(t)
	}
	return entities
}
