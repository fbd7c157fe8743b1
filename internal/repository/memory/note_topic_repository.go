package memory

import (
	"context"
	"sort"

	"knowledgebase-engine/internal/entity"

	"github.com/google/uuid"
)

type noteTopicRepository struct {
	store *Store
}

func (r *noteTopicRepository) ReplaceForNote(ctx context.Context, noteId uuid.UUID, assignments []*entity.NoteTopic) ([]uuid.UUID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	affected := make(map[uuid.UUID]struct{})
	for id, nt := range r.store.noteTopics {
		if nt.NoteId == noteId {
			affected[nt.TopicId] = struct{}{}
			delete(r.store.noteTopics, id)
		}
	}
	for _, a := range assignments {
		copied := *a
		r.store.noteTopics[a.Id] = &copied
		affected[a.TopicId] = struct{}{}
	}
	return sortedTopicIds(affected), nil
}

func (r *noteTopicRepository) DeleteByNoteId(ctx context.Context, noteId uuid.UUID) ([]uuid.UUID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	affected := make(map[uuid.UUID]struct{})
	for id, nt := range r.store.noteTopics {
		if nt.NoteId == noteId {
			affected[nt.TopicId] = struct{}{}
			delete(r.store.noteTopics, id)
		}
	}
	return sortedTopicIds(affected), nil
}

func (r *noteTopicRepository) DeleteByTopicId(ctx context.Context, topicId uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for id, nt := range r.store.noteTopics {
		if nt.TopicId == topicId {
			delete(r.store.noteTopics, id)
		}
	}
	return nil
}

func (r *noteTopicRepository) FindByNoteId(ctx context.Context, noteId uuid.UUID) ([]*entity.NoteTopic, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*entity.NoteTopic
	for _, nt := range r.store.noteTopics {
		if nt.NoteId == noteId {
			copied := *nt
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Confidence > result[j].Confidence
	})
	return result, nil
}

func (r *noteTopicRepository) FindByTopicId(ctx context.Context, topicId uuid.UUID) ([]*entity.NoteTopic, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var result []*entity.NoteTopic
	for _, nt := range r.store.noteTopics {
		if nt.TopicId == topicId {
			copied := *nt
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].NoteId.String() < result[j].NoteId.String()
	})
	return result, nil
}

func sortedTopicIds(set map[uuid.UUID]struct{}) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids
}
