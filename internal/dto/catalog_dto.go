package dto

// ─── Categories ──────────────────────────────────────────────────────────────

type CreateCategoryRequest struct {
	Name     string  `json:"name"      validate:"required,min=2,max=80"`
	ParentID *string `json:"parent_id"`
}

type UpdateCategoryRequest struct {
	Name     *string `json:"name"      validate:"omitempty,min=2,max=80"`
	ParentID *string `json:"parent_id"`
}

type CategoryResponse struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id"`
}

// ─── Locations ───────────────────────────────────────────────────────────────

type CreateLocationRequest struct {
	Name string `json:"name" validate:"required,min=2,max=80"`
	Type string `json:"type" validate:"required,oneof=main_storage outlet warehouse other"`
}

type UpdateLocationRequest struct {
	Name *string `json:"name" validate:"omitempty,min=2,max=80"`
	Type *string `json:"type" validate:"omitempty,oneof=main_storage outlet warehouse other"`
}

type LocationResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}
