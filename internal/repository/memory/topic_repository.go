package memory

import (
	"context"

	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/repository/specification"

	"github.com/google/uuid"
)

type topicRepository struct {
	store *Store
}

func copyTopic(t *entity.Topic) *entity.Topic {
	copied := *t
	if t.Centroid != nil {
		copied.Centroid = append([]float32(nil), t.Centroid...)
	}
	return &copied
}

func (r *topicRepository) Create(ctx context.Context, topic *entity.Topic) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.topics[topic.Id] = copyTopic(topic)
	r.store.topicOrder = append(r.store.topicOrder, topic.Id)
	return nil
}

func (r *topicRepository) Update(ctx context.Context, topic *entity.Topic) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.topics[topic.Id] = copyTopic(topic)
	return nil
}

func (r *topicRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.topics, id)
	for i, tid := range r.store.topicOrder {
		if tid == id {
			r.store.topicOrder = append(r.store.topicOrder[:i], r.store.topicOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (r *topicRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Topic, error) {
	topics, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(topics) == 0 {
		return nil, nil
	}
	return topics[0], nil
}

func (r *topicRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Topic, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var topics []*entity.Topic
	for _, id := range r.store.topicOrder {
		topic, ok := r.store.topics[id]
		if !ok {
			continue
		}
		if matchTopic(topic, specs) {
			topics = append(topics, copyTopic(topic))
		}
	}
	return topics, nil
}

func (r *topicRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	topics, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(topics)), nil
}

func (r *topicRepository) SwapCentroid(ctx context.Context, topicId uuid.UUID, centroid []float32, noteCount int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	topic, ok := r.store.topics[topicId]
	if !ok {
		return nil
	}
	if centroid == nil {
		topic.Centroid = nil
	} else {
		topic.Centroid = append([]float32(nil), centroid...)
	}
	topic.NoteCount = noteCount
	return nil
}

func matchTopic(topic *entity.Topic, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if topic.Id != s.ID {
				return false
			}
		case specification.TopicByName:
			if topic.Name != s.Name {
				return false
			}
		case specification.PredefinedOnly:
			if !topic.IsPredefined {
				return false
			}
		}
	}
	return true
}
