package model

import (
	"encoding/json"
	"time"
)

// AuditLog is an append-only trace of who did what to which entity.
// Rows are never mutated or deleted.
type AuditLog struct {
	ID            string          `gorm:"primaryKey"`
	ActorID       string          `gorm:"not null;index"`
	Action        string          `gorm:"not null"`
	EntityType    string          `gorm:"not null;index"`
	EntityID      string          `gorm:"not null;index"`
	Details       json.RawMessage `gorm:"type:jsonb"`
	OriginAddress string
	CreatedAt     time.Time
}

// TableName overrides GORM's default pluralization.
func (AuditLog) TableName() string { return "audit_logs" }
