package memory

import (
	"context"
	"sort"
	"strings"

	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/repository/specification"

	"github.com/google/uuid"
)

type noteRepository struct {
	store *Store
}

func (r *noteRepository) Create(ctx context.Context, note *entity.Note) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *note
	r.store.notes[note.Id] = &copied
	return nil
}

func (r *noteRepository) Update(ctx context.Context, note *entity.Note) error {
	return r.Create(ctx, note)
}

func (r *noteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.notes, id)
	return nil
}

func (r *noteRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Note, error) {
	matches, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return matches[0], nil
}

func (r *noteRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Note, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	var notes []*entity.Note
	for _, note := range r.store.notes {
		if matchNote(note, specs) {
			copied := *note
			notes = append(notes, &copied)
		}
	}

	// Deterministic iteration for tests.
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.Before(notes[j].CreatedAt)
	})
	return notes, nil
}

func (r *noteRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	notes, err := r.FindAll(ctx, specs...)
	if err != nil {
		return 0, err
	}
	return int64(len(notes)), nil
}

// matchNote interprets the specification types the memory double understands;
// unknown specifications are ignored, matching how tests use them.
func matchNote(note *entity.Note, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if note.Id != s.ID {
				return false
			}
		case specification.ByIDs:
			found := false
			for _, id := range s.IDs {
				if note.Id == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case specification.UserOwnedBy:
			if note.UserId != s.UserID {
				return false
			}
		case specification.NoteSearchQuery:
			q := strings.ToLower(s.Query)
			if !strings.Contains(strings.ToLower(note.Title), q) &&
				!strings.Contains(strings.ToLower(note.Content), q) {
				return false
			}
		}
	}
	return true
}
