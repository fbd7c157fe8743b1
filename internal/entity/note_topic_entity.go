package entity

import (
	"time"

	"github.com/google/uuid"
)

// NoteTopic is one edge of the many-to-many note/topic relation. Each
// (note, topic) pair is unique; Confidence is the clamped similarity in [0,1].
type NoteTopic struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey"`
	NoteId     uuid.UUID `gorm:"type:uuid;index:idx_note_topic,unique"`
	TopicId    uuid.UUID `gorm:"type:uuid;index:idx_note_topic,unique"`
	Confidence float32
	CreatedAt  time.Time
}
