// internal/api/handlers/buying_order_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/cheapr/opsboard/internal/service"
	"github.com/gin-gonic/gin"
)

type BuyingOrderHandler struct {
	reconcile *service.ReconcileService
}

func NewBuyingOrderHandler(reconcile *service.ReconcileService) *BuyingOrderHandler {
	return &BuyingOrderHandler{reconcile: reconcile}
}

type createBuyingOrderRequest struct {
	OrderDate   time.Time `json:"order_date" binding:"required"`
	SellerID    *int64    `json:"seller"`
	Channel     string    `json:"channel"`
	Destination string    `json:"destination"`
	Status      string    `json:"status"`
	ShipToName  string    `json:"ship_to_name"`
	ShipToZip   string    `json:"ship_to_zip"`
}

func (h *BuyingOrderHandler) Create(c *gin.Context) {
	var req createBuyingOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_BODY", err.Error())
		return
	}

	order := &domain.BuyingOrder{
		OrderDate:  req.OrderDate,
		SellerID:   req.SellerID,
		Channel:    req.Channel,
		Status:     req.Status,
		ShipToName: req.ShipToName,
		ShipToZip:  req.ShipToZip,
	}
	if req.Destination != "" {
		dest, ok := domain.ParseDestination(req.Destination)
		if !ok {
			badRequest(c, "INVALID_DESTINATION", "destination must be House or Dropship")
			return
		}
		order.Destination = dest
	}

	if err := h.reconcile.CreateBuyingOrder(c.Request.Context(), order); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *BuyingOrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.reconcile.GetBuyingOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *BuyingOrderHandler) List(c *gin.Context) {
	limit, offset := pageParams(c)

	orders, err := h.reconcile.ListBuyingOrders(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": orders, "count": len(orders)})
}

type patchBuyingOrderRequest struct {
	Destination *string `json:"destination"`
	Verified    *bool   `json:"verified"`
}

// Patch applies one edit to a buying order: route it, or toggle verified.
// Routing to dropship also returns the match candidates.
func (h *BuyingOrderHandler) Patch(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req patchBuyingOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_BODY", err.Error())
		return
	}

	switch {
	case req.Destination != nil:
		dest, ok := domain.ParseDestination(*req.Destination)
		if !ok {
			badRequest(c, "INVALID_DESTINATION", "destination must be House or Dropship")
			return
		}

		order, candidates, err := h.reconcile.SetDestination(c.Request.Context(), id,
			domain.SetDestination{Destination: dest})
		if err != nil {
			respondError(c, err)
			return
		}
		if candidates != nil {
			c.JSON(http.StatusOK, gin.H{"order": order, "matches": candidates})
			return
		}
		c.JSON(http.StatusOK, order)

	case req.Verified != nil:
		order, err := h.reconcile.SetVerified(c.Request.Context(), id,
			domain.SetVerified{Verified: *req.Verified})
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order)

	default:
		badRequest(c, "EMPTY_PATCH", "nothing to update")
	}
}

func (h *BuyingOrderHandler) FindMatches(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	candidates, err := h.reconcile.FindMatches(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, candidates)
}

type linkRequest struct {
	Purchase int64 `json:"purchase" binding:"required"`
	Sales    int64 `json:"sales" binding:"required"`
}

func (h *BuyingOrderHandler) CreateLink(c *gin.Context) {
	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_BODY", err.Error())
		return
	}

	created, err := h.reconcile.PickSelling(c.Request.Context(), domain.LinkSale{
		BuyingOrderID:  req.Purchase,
		SellingOrderID: req.Sales,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"created": created})
}

func (h *BuyingOrderHandler) DeleteLink(c *gin.Context) {
	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_BODY", err.Error())
		return
	}

	deleted, err := h.reconcile.RemoveSelling(c.Request.Context(), domain.LinkSale{
		BuyingOrderID:  req.Purchase,
		SellingOrderID: req.Sales,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

type createReplacementRequest struct {
	Purchase int64 `json:"purchase" binding:"required"`
}

func (h *BuyingOrderHandler) CreateReplacement(c *gin.Context) {
	salesItemID, ok := pathID(c)
	if !ok {
		return
	}

	var req createReplacementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_BODY", err.Error())
		return
	}

	replacement, err := h.reconcile.CreateReplacement(c.Request.Context(), salesItemID, req.Purchase)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, replacement)
}
