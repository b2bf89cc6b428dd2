package model

import "time"

// Session groups a sequence of inventory movements initiated by one user at
// one location. Status: in_progress → completed | cancelled (terminal).
// Transactions back-reference the session via their session_id column.
type Session struct {
	ID          string        `gorm:"primaryKey"`
	Type        SessionType   `gorm:"type:varchar(20);not null"`
	Status      SessionStatus `gorm:"type:varchar(20);not null;default:'in_progress';index"`
	LocationID  string        `gorm:"not null;index"`
	CreatedBy   string        `gorm:"not null;index"`
	Notes       *string
	StartedAt   time.Time
	CompletedAt *time.Time

	Location *Location `gorm:"foreignKey:LocationID"`
}
