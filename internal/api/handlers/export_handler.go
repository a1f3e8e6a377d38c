// internal/api/handlers/export_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/cheapr/opsboard/internal/service"
	"github.com/gin-gonic/gin"
)

type ExportHandler struct {
	exports *service.ExportService
}

func NewExportHandler(exports *service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

type exportRequest struct {
	Since *time.Time `json:"since"`
}

// CreateReconciliationExport uploads a CSV of orders verified since the
// given time (default: the last 24 hours) and returns the object key.
func (h *ExportHandler) CreateReconciliationExport(c *gin.Context) {
	var req exportRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "INVALID_BODY", err.Error())
			return
		}
	}

	since := time.Now().Add(-24 * time.Hour)
	if req.Since != nil {
		since = *req.Since
	}

	key, err := h.exports.ExportVerifiedSince(c.Request.Context(), since)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"key": key})
}
