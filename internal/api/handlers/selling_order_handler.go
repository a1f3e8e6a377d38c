// internal/api/handlers/selling_order_handler.go
package handlers

import (
	"net/http"
	"time"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/cheapr/opsboard/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type SellingOrderHandler struct {
	sales *service.SalesService
}

func NewSellingOrderHandler(sales *service.SalesService) *SellingOrderHandler {
	return &SellingOrderHandler{sales: sales}
}

type customerRequest struct {
	Name    string `json:"name" binding:"required"`
	Street1 string `json:"street_1"`
	Street2 string `json:"street_2"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

type salesItemRequest struct {
	InventoryItemID *int64  `json:"item"`
	SubSKU          *string `json:"sub_sku"`
	ManagerID       *int64  `json:"manager"`
}

type createSellingOrderRequest struct {
	OrderDate  time.Time          `json:"order_date" binding:"required"`
	Channel    string             `json:"channel"`
	Status     string             `json:"status"`
	GrossSales *decimal.Decimal   `json:"gross_sales"`
	Profit     *decimal.Decimal   `json:"profit"`
	ChannelFee *decimal.Decimal   `json:"channel_fee"`
	Customer   *customerRequest   `json:"customer"`
	Items      []salesItemRequest `json:"sales_items"`
}

func (h *SellingOrderHandler) Create(c *gin.Context) {
	var req createSellingOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_BODY", err.Error())
		return
	}

	order := &domain.SellingOrder{
		OrderDate:  req.OrderDate,
		Channel:    req.Channel,
		Status:     domain.SellingStatus(req.Status),
		GrossSales: req.GrossSales,
		Profit:     req.Profit,
		ChannelFee: req.ChannelFee,
	}
	if req.Customer != nil {
		order.Customer = &domain.Person{
			Name:    req.Customer.Name,
			Street1: req.Customer.Street1,
			Street2: req.Customer.Street2,
			City:    req.Customer.City,
			State:   req.Customer.State,
			Zip:     req.Customer.Zip,
		}
	}
	for _, item := range req.Items {
		order.Items = append(order.Items, &domain.SalesItem{
			InventoryItemID: item.InventoryItemID,
			SubSKU:          item.SubSKU,
			ManagerID:       item.ManagerID,
		})
	}

	if err := h.sales.CreateSellingOrder(c.Request.Context(), order); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *SellingOrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	order, err := h.sales.GetSellingOrder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *SellingOrderHandler) List(c *gin.Context) {
	limit, offset := pageParams(c)

	orders, err := h.sales.ListSellingOrders(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": orders, "count": len(orders)})
}

func (h *SellingOrderHandler) ListSellers(c *gin.Context) {
	sellers, err := h.sales.ListSellers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": sellers, "count": len(sellers)})
}

func (h *SellingOrderHandler) SearchProducts(c *gin.Context) {
	limit, offset := pageParams(c)

	products, err := h.sales.SearchProducts(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": products, "count": len(products)})
}
