package model

import "time"

// InventoryRecord caches the on-hand quantity for one (product, location)
// pair. It is derived state: it must always equal the signed sum of the
// ledger entries affecting the pair. Created on first movement into the
// pair; never deleted, only zeroed.
type InventoryRecord struct {
	ID            string `gorm:"primaryKey"`
	ProductID     string `gorm:"not null;uniqueIndex:idx_product_location"`
	LocationID    string `gorm:"not null;uniqueIndex:idx_product_location"`
	Quantity      int    `gorm:"not null;default:0"`
	LastCountedAt *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Product  *Product  `gorm:"foreignKey:ProductID"`
	Location *Location `gorm:"foreignKey:LocationID"`
}

// TableName keeps the table name short, matching the schema.
func (InventoryRecord) TableName() string { return "inventory" }

// InventoryTransaction is one immutable ledger entry recording a single
// quantity movement. Entries are NEVER modified or deleted — reversals
// append compensating entries.
type InventoryTransaction struct {
	ID                    string          `gorm:"primaryKey"`
	Type                  TransactionType `gorm:"type:varchar(20);not null;index"`
	ProductID             string          `gorm:"not null;index"`
	SourceLocationID      *string         `gorm:"index"`
	DestinationLocationID *string         `gorm:"index"`
	// Quantity is always positive; direction comes from the type and the
	// source/destination columns.
	Quantity       int `gorm:"not null"`
	BatchNumber    *string
	ExpirationDate *time.Time
	Notes          *string
	CreatedBy      string  `gorm:"not null;index"`
	SessionID      *string `gorm:"index"`
	CreatedAt      time.Time

	Product *Product `gorm:"foreignKey:ProductID"`
}

// TableName overrides GORM's default pluralization.
func (InventoryTransaction) TableName() string { return "inventory_transactions" }

// SignedEffect returns the delta this entry applies to the given location,
// or 0 when the entry does not touch it.
func (t *InventoryTransaction) SignedEffect(locationID string) int {
	effect := 0
	if t.SourceLocationID != nil && *t.SourceLocationID == locationID {
		effect -= t.Quantity
	}
	if t.DestinationLocationID != nil && *t.DestinationLocationID == locationID {
		effect += t.Quantity
	}
	return effect
}
