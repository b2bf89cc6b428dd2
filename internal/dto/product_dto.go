package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateProductRequest struct {
	Name         string          `json:"name"          validate:"required,min=2,max=120"`
	Barcode      *string         `json:"barcode"       validate:"omitempty,min=4,max=32"`
	CategoryID   *string         `json:"category_id"`
	SupplierID   *string         `json:"supplier_id"`
	UnitPrice    decimal.Decimal `json:"unit_price"    validate:"min=0"`
	UnitCost     decimal.Decimal `json:"unit_cost"     validate:"min=0"`
	CaseSize     int             `json:"case_size"     validate:"omitempty,min=1"`
	MinimumStock int             `json:"minimum_stock" validate:"min=0"`
}

type UpdateProductRequest struct {
	Name         *string          `json:"name"          validate:"omitempty,min=2,max=120"`
	Barcode      *string          `json:"barcode"       validate:"omitempty,min=4,max=32"`
	CategoryID   *string          `json:"category_id"`
	SupplierID   *string          `json:"supplier_id"`
	UnitPrice    *decimal.Decimal `json:"unit_price"`
	UnitCost     *decimal.Decimal `json:"unit_cost"`
	CaseSize     *int             `json:"case_size"     validate:"omitempty,min=1"`
	MinimumStock *int             `json:"minimum_stock" validate:"omitempty,min=0"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type ProductFilter struct {
	Barcode    string `form:"barcode"`
	Search     string `form:"search"`
	CategoryID string `form:"category_id"`
	// Active: "false" = inactive only, "all" = everything, default = active only
	Active string `form:"active"`
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=20" validate:"min=1,max=100"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ProductResponse struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Barcode      *string         `json:"barcode"`
	CategoryID   *string         `json:"category_id"`
	CategoryName *string         `json:"category_name,omitempty"`
	SupplierID   *string         `json:"supplier_id"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	CaseSize     int             `json:"case_size"`
	MinimumStock int             `json:"minimum_stock"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    string          `json:"created_at"`
}

type ProductListResponse struct {
	Data  []ProductResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
