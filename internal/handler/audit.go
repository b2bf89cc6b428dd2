package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tkamphefner/Inventory/internal/model"
	"github.com/tkamphefner/Inventory/internal/repository"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct{ repo repository.AuditRepository }

func NewAuditHandler(repo repository.AuditRepository) *AuditHandler {
	return &AuditHandler{repo: repo}
}

type auditEntryResponse struct {
	ID            string          `json:"id"`
	ActorID       string          `json:"actor_id"`
	Action        string          `json:"action"`
	EntityType    string          `json:"entity_type"`
	EntityID      string          `json:"entity_id"`
	Details       json.RawMessage `json:"details,omitempty"`
	OriginAddress string          `json:"origin_address"`
	CreatedAt     string          `json:"created_at"`
}

type auditListResponse struct {
	Data  []auditEntryResponse `json:"data"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Limit int                  `json:"limit"`
}

func (h *AuditHandler) List(c *gin.Context) {
	filter := repository.AuditFilter{
		ActorID:    c.Query("actor_id"),
		EntityType: c.Query("entity_type"),
		EntityID:   c.Query("entity_id"),
		Page:       intQuery(c, "page", 1),
		Limit:      intQuery(c, "limit", 100),
	}
	entries, total, err := h.repo.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := auditListResponse{
		Data:  make([]auditEntryResponse, len(entries)),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}
	for i := range entries {
		resp.Data[i] = auditEntryToResponse(&entries[i])
	}
	c.JSON(http.StatusOK, resp)
}

func auditEntryToResponse(e *model.AuditLog) auditEntryResponse {
	return auditEntryResponse{
		ID:            e.ID,
		ActorID:       e.ActorID,
		Action:        e.Action,
		EntityType:    e.EntityType,
		EntityID:      e.EntityID,
		Details:       e.Details,
		OriginAddress: e.OriginAddress,
		CreatedAt:     e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
