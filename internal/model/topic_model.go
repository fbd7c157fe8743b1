package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/datatypes"
)

type Topic struct {
	Id           uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name         string           `gorm:"type:varchar(255);uniqueIndex;not null"`
	Description  string           `gorm:"type:text"`
	Color        string           `gorm:"type:varchar(16)"`
	Keywords     datatypes.JSON   `gorm:"type:jsonb"`
	IsPredefined bool             `gorm:"default:false"`
	Centroid     *pgvector.Vector `gorm:"type:vector(768)"` // nil until a note is assigned
	NoteCount    int              `gorm:"default:0"`
	CreatedAt    time.Time        `gorm:"autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"autoUpdateTime"`
}

func (Topic) TableName() string {
	return "topics"
}

type NoteTopic struct {
	Id         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NoteId     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_note_topic"`
	TopicId    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_note_topic;index"`
	Confidence float32   `gorm:"not null"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
}

func (NoteTopic) TableName() string {
	return "note_topics"
}
