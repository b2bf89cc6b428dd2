package model

import (
	"encoding/json"
	"time"
)

// Report is a saved report definition. Results are computed on demand and
// never persisted.
type Report struct {
	ID   string     `gorm:"primaryKey"`
	Name string     `gorm:"not null"`
	Type ReportType `gorm:"type:varchar(30);not null"`
	// Parameters is a JSON bag interpreted per report type (location_id,
	// category_id, date range, …).
	Parameters json.RawMessage `gorm:"type:jsonb;not null;default:'{}'"`
	CreatedBy  string          `gorm:"not null"`
	// Schedule is an interval string like "24h"; empty/nil means manual only.
	Schedule  *string
	LastRunAt *time.Time
	IsActive  bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
