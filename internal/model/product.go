package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog entry. Deactivation is a soft delete: the row stays so
// that ledger entries and reports keep resolving the product.
type Product struct {
	ID   string `gorm:"primaryKey"`
	Name string `gorm:"index;not null"`
	// Barcode is nullable; uniqueness is enforced only among non-null values
	// (Postgres unique indexes ignore NULLs).
	Barcode      *string         `gorm:"uniqueIndex"`
	CategoryID   *string         `gorm:"index"`
	SupplierID   *string         `gorm:"index"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	UnitCost     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CaseSize     int             `gorm:"not null;default:1"`
	MinimumStock int             `gorm:"not null;default:0"`
	IsActive     bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Category *Category `gorm:"foreignKey:CategoryID"`
}
