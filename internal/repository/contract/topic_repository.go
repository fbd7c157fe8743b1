package contract

import (
	"context"

	"knowledgebase-engine/internal/entity"
	"knowledgebase-engine/internal/repository/specification"

	"github.com/google/uuid"
)

type TopicRepository interface {
	Create(ctx context.Context, topic *entity.Topic) error
	Update(ctx context.Context, topic *entity.Topic) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Topic, error)

	// FindAll returns topics ordered by creation time ascending unless an
	// OrderBy specification overrides it. Creation order is the tie-break
	// for equal-confidence classification, so it must be stable.
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Topic, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// SwapCentroid atomically replaces the stored centroid and note count.
	// A nil centroid clears it (topic lost all members). Readers never
	// observe a half-written vector.
	SwapCentroid(ctx context.Context, topicId uuid.UUID, centroid []float32, noteCount int) error
}
