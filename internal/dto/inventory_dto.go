package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Transactions ────────────────────────────────────────────────────────────

type RecordTransactionRequest struct {
	Type                  string     `json:"type"                    validate:"required,oneof=check_in check_out transfer"`
	ProductID             string     `json:"product_id"              validate:"required"`
	SourceLocationID      *string    `json:"source_location_id"`
	DestinationLocationID *string    `json:"destination_location_id"`
	Quantity              int        `json:"quantity"                validate:"required,gt=0"`
	BatchNumber           *string    `json:"batch_number"`
	ExpirationDate        *time.Time `json:"expiration_date"`
	Notes                 *string    `json:"notes"`
}

type SetQuantityRequest struct {
	ProductID  string  `json:"product_id"  validate:"required"`
	LocationID string  `json:"location_id" validate:"required"`
	Quantity   int     `json:"quantity"    validate:"min=0"`
	Notes      *string `json:"notes"`
}

type TransactionResponse struct {
	ID                    string  `json:"id"`
	Type                  string  `json:"type"`
	ProductID             string  `json:"product_id"`
	ProductName           string  `json:"product_name,omitempty"`
	SourceLocationID      *string `json:"source_location_id"`
	DestinationLocationID *string `json:"destination_location_id"`
	Quantity              int     `json:"quantity"`
	BatchNumber           *string `json:"batch_number,omitempty"`
	ExpirationDate        *string `json:"expiration_date,omitempty"`
	Notes                 *string `json:"notes,omitempty"`
	CreatedBy             string  `json:"created_by"`
	SessionID             *string `json:"session_id,omitempty"`
	CreatedAt             string  `json:"created_at"`
}

type TransactionFilter struct {
	ProductID  string `form:"product_id"`
	LocationID string `form:"location_id"`
	Type       string `form:"type" validate:"omitempty,oneof=check_in check_out adjustment transfer"`
	SessionID  string `form:"session_id"`
	From       string `form:"from"` // RFC 3339
	To         string `form:"to"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type TransactionListResponse struct {
	Data  []TransactionResponse `json:"data"`
	Total int64                 `json:"total"`
	Page  int                   `json:"page"`
	Limit int                   `json:"limit"`
}

// RecordResponse is the raw cache row returned by quantity adjustments.
type RecordResponse struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"product_id"`
	LocationID    string  `json:"location_id"`
	Quantity      int     `json:"quantity"`
	LastCountedAt *string `json:"last_counted_at,omitempty"`
}

// ─── Levels ──────────────────────────────────────────────────────────────────

type LevelFilter struct {
	LocationID   string `form:"location_id"`
	CategoryID   string `form:"category_id"`
	Search       string `form:"search"`
	LowStockOnly bool   `form:"low_stock_only"`
	Page         int    `form:"page,default=1"   validate:"min=1"`
	Limit        int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// LevelResponse is an inventory record enriched with product, category and
// location names for display.
type LevelResponse struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Barcode       *string         `json:"barcode"`
	CategoryID    *string         `json:"category_id"`
	CategoryName  *string         `json:"category_name"`
	LocationID    string          `json:"location_id"`
	LocationName  string          `json:"location_name"`
	Quantity      int             `json:"quantity"`
	MinimumStock  int             `json:"minimum_stock"`
	LowStock      bool            `json:"low_stock"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Value         decimal.Decimal `json:"value"`
	LastCountedAt *string         `json:"last_counted_at,omitempty"`
}

type LevelListResponse struct {
	Data  []LevelResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

// ─── Summary ─────────────────────────────────────────────────────────────────

type CategoryBreakdown struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Quantity     int             `json:"quantity"`
	Value        decimal.Decimal `json:"value"`
	Cost         decimal.Decimal `json:"cost"`
}

type SummaryResponse struct {
	TotalQuantity int                 `json:"total_quantity"`
	TotalValue    decimal.Decimal     `json:"total_value"`
	TotalCost     decimal.Decimal     `json:"total_cost"`
	LowStockCount int                 `json:"low_stock_count"`
	Categories    []CategoryBreakdown `json:"categories"`
}
