package fts

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemoryProvider is the in-memory double for tests: token-overlap scoring
// over documents indexed by note id.
type MemoryProvider struct {
	mu   sync.RWMutex
	docs map[uuid.UUID]indexedDoc
}

type indexedDoc struct {
	userId uuid.UUID
	tokens map[string]int
}

func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{docs: make(map[uuid.UUID]indexedDoc)}
}

// Index adds or replaces the document for a note.
func (p *MemoryProvider) Index(noteId, userId uuid.UUID, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs[noteId] = indexedDoc{userId: userId, tokens: tokenize(text)}
}

// Remove drops a note from the index.
func (p *MemoryProvider) Remove(noteId uuid.UUID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.docs, noteId)
}

func (p *MemoryProvider) Search(ctx context.Context, userId uuid.UUID, query string, limit int) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 20
	}

	queryTokens := tokenize(query)

	p.mu.RLock()
	defer p.mu.RUnlock()

	var hits []Hit
	for id, doc := range p.docs {
		if doc.userId != userId {
			continue
		}
		var score float64
		for tok := range queryTokens {
			if n, ok := doc.tokens[tok]; ok {
				score += float64(n)
			}
		}
		if score > 0 {
			hits = append(hits, Hit{NoteId: id, Score: score})
		}
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		// Stable order for equal scores so tests are deterministic.
		return hits[i].NoteId.String() < hits[j].NoteId.String()
	})

	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func tokenize(text string) map[string]int {
	tokens := make(map[string]int)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,;:!?\"'()[]")
		if tok != "" {
			tokens[tok]++
		}
	}
	return tokens
}
