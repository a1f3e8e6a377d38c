// internal/api/handlers/inventory_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/cheapr/opsboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type InventoryHandler struct {
	inventory *service.InventoryService
}

func NewInventoryHandler(inventory *service.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

func (h *InventoryHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	item, err := h.inventory.GetItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) CopyItem(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	copy, err := h.inventory.CopyItem(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, copy)
}

func (h *InventoryHandler) UseTrackingForAll(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	updated, err := h.inventory.UseTrackingForAll(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

type patchInventoryRequest struct {
	TotalCost    *decimal.Decimal `json:"total_cost"`
	ShippingCost *decimal.Decimal `json:"shipping_cost"`
	TrackingID   *int64           `json:"tracking"`
}

// Patch applies one edit to an inventory item: attach a tracking record or
// update the cost fields.
func (h *InventoryHandler) Patch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req patchInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_BODY", err.Error())
		return
	}

	if req.TrackingID != nil {
		item, err := h.inventory.AttachTracking(c.Request.Context(), id,
			domain.AttachTracking{TrackingID: *req.TrackingID})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
		return
	}

	item, err := h.inventory.UpdateCosts(c.Request.Context(), id, domain.SetCosts{
		TotalCost:    req.TotalCost,
		ShippingCost: req.ShippingCost,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, item)
}

type createTrackingRequest struct {
	Carrier        string     `json:"carrier"`
	TrackingNumber string     `json:"tracking_number" binding:"required"`
	ETADate        *time.Time `json:"eta_date"`
	Status         string     `json:"status"`
}

func (h *InventoryHandler) CreateTracking(c *gin.Context) {
	var req createTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_BODY", err.Error())
		return
	}

	t := &domain.Tracking{
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
		ETADate:        req.ETADate,
	}
	if req.Status != "" {
		status, ok := domain.ParseTrackingStatus(req.Status)
		if !ok {
			badRequest(c, "INVALID_STATUS", "unknown tracking status")
			return
		}
		t.Status = status
	}

	created, err := h.inventory.CreateTracking(c.Request.Context(), t)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *InventoryHandler) GetTracking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	t, err := h.inventory.GetTracking(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

type patchTrackingRequest struct {
	Carrier        *string    `json:"carrier"`
	TrackingNumber *string    `json:"tracking_number"`
	Status         *string    `json:"status"`
	ETADate        *time.Time `json:"eta_date"`
}

func (h *InventoryHandler) PatchTracking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req patchTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_BODY", err.Error())
		return
	}

	cmd := domain.UpdateTracking{
		Carrier:        req.Carrier,
		TrackingNumber: req.TrackingNumber,
		ETADate:        req.ETADate,
	}
	if req.Status != nil {
		status, ok := domain.ParseTrackingStatus(*req.Status)
		if !ok {
			badRequest(c, "INVALID_STATUS", "unknown tracking status")
			return
		}
		cmd.Status = &status
	}

	t, err := h.inventory.UpdateTracking(c.Request.Context(), id, cmd)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}
