package model

import "time"

// Category classifies products. The hierarchy is single-level: a child's
// parent is treated as equivalent to the category itself in filters and
// roll-up aggregation.
type Category struct {
	ID        string  `gorm:"primaryKey"`
	Name      string  `gorm:"uniqueIndex;not null"`
	ParentID  *string `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's pluralization (category → categories).
func (Category) TableName() string { return "categories" }
