package specification

import "gorm.io/gorm"

// Specification composes query filters. Production repositories apply them to
// GORM queries; the in-memory doubles interpret the concrete types directly.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}
