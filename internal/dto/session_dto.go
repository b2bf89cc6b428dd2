package dto

import "time"

type CreateSessionRequest struct {
	Type       string  `json:"type"        validate:"required,oneof=check_in check_out inventory_count"`
	LocationID string  `json:"location_id" validate:"required"`
	Notes      *string `json:"notes"`
}

type AddMovementRequest struct {
	ProductID      string     `json:"product_id" validate:"required"`
	Quantity       int        `json:"quantity"   validate:"required,gt=0"`
	BatchNumber    *string    `json:"batch_number"`
	ExpirationDate *time.Time `json:"expiration_date"`
	Notes          *string    `json:"notes"`
}

type SessionResponse struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Status       string  `json:"status"`
	LocationID   string  `json:"location_id"`
	LocationName string  `json:"location_name,omitempty"`
	CreatedBy    string  `json:"created_by"`
	Notes        *string `json:"notes"`
	StartedAt    string  `json:"started_at"`
	CompletedAt  *string `json:"completed_at,omitempty"`
}

type SessionFilter struct {
	Status     string `form:"status" validate:"omitempty,oneof=in_progress completed cancelled"`
	Type       string `form:"type"   validate:"omitempty,oneof=check_in check_out inventory_count"`
	LocationID string `form:"location_id"`
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=20" validate:"min=1,max=100"`
}

type SessionListResponse struct {
	Data  []SessionResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
