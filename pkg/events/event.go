// Package events defines the domain events the engine publishes to the
// outside world (note embedded, note classified, topics recomputed).
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is the contract for everything that crosses the event bus.
type Event interface {
	// EventType returns the unique code for this event, e.g. "NOTE_EMBEDDED".
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the generic implementation used by all engine events.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string               { return e.Type }
func (e BaseEvent) Payload() map[string]interface{} { return e.Data }
func (e BaseEvent) Timestamp() time.Time            { return e.OccurredAt }

// NoteEmbedded signals that a note's embedding was (re)generated and stored.
func NoteEmbedded(noteId uuid.UUID, model string) Event {
	return BaseEvent{
		Type: "NOTE_EMBEDDED",
		Data: map[string]interface{}{
			"note_id": noteId,
			"model":   model,
		},
		OccurredAt: time.Now(),
	}
}

// NoteClassified signals that a note's topic assignments were refreshed.
func NoteClassified(noteId uuid.UUID, topicIds []uuid.UUID) Event {
	return BaseEvent{
		Type: "NOTE_CLASSIFIED",
		Data: map[string]interface{}{
			"note_id":   noteId,
			"topic_ids": topicIds,
		},
		OccurredAt: time.Now(),
	}
}

// TopicsRecomputed signals that a batch of topic centroids was refreshed.
func TopicsRecomputed(topicIds []uuid.UUID) Event {
	return BaseEvent{
		Type: "TOPICS_RECOMPUTED",
		Data: map[string]interface{}{
			"topic_ids": topicIds,
		},
		OccurredAt: time.Now(),
	}
}
