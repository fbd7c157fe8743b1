package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type NoteEmbedding struct {
	Id          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NoteId      uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_note_model"`
	Model       string          `gorm:"type:varchar(128);not null;uniqueIndex:idx_note_model"`
	Vector      pgvector.Vector `gorm:"type:vector(768)"`
	Dimensions  int             `gorm:"not null"`
	ContentHash string          `gorm:"type:varchar(64);index"`
	CreatedAt   time.Time       `gorm:"autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime"`
}

func (NoteEmbedding) TableName() string {
	return "note_embeddings"
}
