package specification

import "gorm.io/gorm"

// TopicByName filters topics by exact name.
type TopicByName struct {
	Name string
}

func (s TopicByName) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("name = ?", s.Name)
}

// PredefinedOnly restricts to seeded topics.
type PredefinedOnly struct{}

func (s PredefinedOnly) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("is_predefined = true")
}
