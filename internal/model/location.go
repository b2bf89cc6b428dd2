package model

import "time"

// Location is a physical place stock can sit in.
type Location struct {
	ID        string       `gorm:"primaryKey"`
	Name      string       `gorm:"uniqueIndex;not null"`
	Type      LocationType `gorm:"type:varchar(20);not null;default:'other'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
