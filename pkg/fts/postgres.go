package fts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PostgresProvider ranks notes with Postgres full-text search (ts_rank over
// title and content). Scores from ts_rank are unbounded.
type PostgresProvider struct {
	db *gorm.DB
}

func NewPostgresProvider(db *gorm.DB) *PostgresProvider {
	return &PostgresProvider{db: db}
}

func (p *PostgresProvider) Search(ctx context.Context, userId uuid.UUID, query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 20
	}

	type row struct {
		NoteId uuid.UUID
		Score  float64
	}
	var rows []row

	err := p.db.WithContext(ctx).
		Table("notes").
		Select(`id as note_id,
			ts_rank(
				setweight(to_tsvector('simple', coalesce(title, '')), 'A') ||
				setweight(to_tsvector('simple', coalesce(content, '')), 'B'),
				plainto_tsquery('simple', ?)
			) as score`, query).
		Where("user_id = ?", userId).
		Where("deleted_at IS NULL").
		Where(`(
			setweight(to_tsvector('simple', coalesce(title, '')), 'A') ||
			setweight(to_tsvector('simple', coalesce(content, '')), 'B')
		) @@ plainto_tsquery('simple', ?)`, query).
		Order("score DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, len(rows))
	for i, r := range rows {
		hits[i] = Hit{NoteId: r.NoteId, Score: r.Score}
	}
	return hits, nil
}
