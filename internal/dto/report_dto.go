package dto

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

type CreateReportRequest struct {
	Name       string          `json:"name"       validate:"required,min=2,max=120"`
	Type       string          `json:"type"       validate:"required,oneof=valuation low_stock transaction_history"`
	Parameters json.RawMessage `json:"parameters"`
	Schedule   *string         `json:"schedule"`
}

type UpdateReportRequest struct {
	Name       *string         `json:"name" validate:"omitempty,min=2,max=120"`
	Parameters json.RawMessage `json:"parameters"`
	Schedule   *string         `json:"schedule"`
	IsActive   *bool           `json:"is_active"`
}

type ReportResponse struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Type       string          `json:"type"`
	Parameters json.RawMessage `json:"parameters"`
	CreatedBy  string          `json:"created_by"`
	Schedule   *string         `json:"schedule"`
	LastRunAt  *string         `json:"last_run,omitempty"`
	IsActive   bool            `json:"is_active"`
	CreatedAt  string          `json:"created_at"`
}

// ReportParameters is the interpreted shape of a report's JSON parameter bag.
// Unknown keys are ignored; every field is optional.
type ReportParameters struct {
	LocationID string `json:"location_id"`
	CategoryID string `json:"category_id"`
	From       string `json:"from"`
	To         string `json:"to"`
}

// CategoryValuation is one row of a valuation roll-up.
type CategoryValuation struct {
	CategoryID   string          `json:"category_id"`
	CategoryName string          `json:"category_name"`
	Quantity     int             `json:"quantity"`
	Value        decimal.Decimal `json:"value"`
	Cost         decimal.Decimal `json:"cost"`
}

type ValuationResult struct {
	TotalQuantity int                 `json:"total_quantity"`
	TotalValue    decimal.Decimal     `json:"total_value"`
	TotalCost     decimal.Decimal     `json:"total_cost"`
	Categories    []CategoryValuation `json:"categories"`
}

// ReportResult is the on-demand output of running a report definition.
// Exactly one of the payload fields is set, matching Type.
type ReportResult struct {
	ReportID    string                `json:"report_id"`
	Type        string                `json:"type"`
	GeneratedAt string                `json:"generated_at"`
	Valuation   *ValuationResult      `json:"valuation,omitempty"`
	LowStock    []LevelResponse       `json:"low_stock,omitempty"`
	History     []TransactionResponse `json:"history,omitempty"`
}
