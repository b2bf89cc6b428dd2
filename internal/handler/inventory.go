package handler

import (
	"net/http"

	"github.com/tkamphefner/Inventory/internal/dto"
	"github.com/tkamphefner/Inventory/internal/model"
	"github.com/tkamphefner/Inventory/internal/service"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct{ svc service.InventoryService }

func NewInventoryHandler(svc service.InventoryService) *InventoryHandler {
	return &InventoryHandler{svc: svc}
}

// RecordTransaction appends one standalone ledger movement.
func (h *InventoryHandler) RecordTransaction(c *gin.Context) {
	var req dto.RecordTransactionRequest
	if !bindAndValidate(c, &req) {
		return
	}
	tx, err := h.svc.RecordTransaction(c.Request.Context(), service.MovementInput{
		Type:                  model.TransactionType(req.Type),
		ProductID:             req.ProductID,
		SourceLocationID:      req.SourceLocationID,
		DestinationLocationID: req.DestinationLocationID,
		Quantity:              req.Quantity,
		BatchNumber:           req.BatchNumber,
		ExpirationDate:        req.ExpirationDate,
		Notes:                 req.Notes,
		Actor:                 actorFrom(c),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, service.TransactionToResponse(tx))
}

// SetQuantity overwrites a cached stock level, recording the delta as an
// adjustment in the ledger.
func (h *InventoryHandler) SetQuantity(c *gin.Context) {
	var req dto.SetQuantityRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.SetQuantity(c.Request.Context(), req, actorFrom(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) Levels(c *gin.Context) {
	var filter dto.LevelFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.GetLevels(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) Summary(c *gin.Context) {
	resp, err := h.svc.GetSummary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InventoryHandler) Transactions(c *gin.Context) {
	var filter dto.TransactionFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
