// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/cheapr/opsboard/internal/api/handlers"
	"github.com/cheapr/opsboard/internal/api/middleware"
	"github.com/cheapr/opsboard/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Reconcile *service.ReconcileService
	Inventory *service.InventoryService
	Sales     *service.SalesService
	Exports   *service.ExportService
}

func NewRouter(services *Services, allowedOrigins []string, apiToken string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.Auth(apiToken))

	if services != nil {
		if services.Reconcile != nil {
			buyingHandler := handlers.NewBuyingOrderHandler(services.Reconcile)
			buyingGroup := apiGroup.Group("/buying_orders")
			{
				buyingGroup.GET("", buyingHandler.List)
				buyingGroup.POST("", buyingHandler.Create)
				buyingGroup.GET("/:id", buyingHandler.Get)
				buyingGroup.PATCH("/:id", buyingHandler.Patch)
				buyingGroup.GET("/:id/find_matches", buyingHandler.FindMatches)
			}
			apiGroup.POST("/create_selling_buying", buyingHandler.CreateLink)
			apiGroup.POST("/delete_selling_buying", buyingHandler.DeleteLink)
			apiGroup.POST("/sales_items/:id/create_replacement", buyingHandler.CreateReplacement)
		}

		if services.Sales != nil {
			sellingHandler := handlers.NewSellingOrderHandler(services.Sales)
			sellingGroup := apiGroup.Group("/selling_orders")
			{
				sellingGroup.GET("", sellingHandler.List)
				sellingGroup.POST("", sellingHandler.Create)
				sellingGroup.GET("/:id", sellingHandler.Get)
			}
			apiGroup.GET("/sellers", sellingHandler.ListSellers)
			apiGroup.GET("/products", sellingHandler.SearchProducts)
		}

		if services.Inventory != nil {
			inventoryHandler := handlers.NewInventoryHandler(services.Inventory)
			itemGroup := apiGroup.Group("/inventory_items")
			{
				itemGroup.GET("/:id", inventoryHandler.Get)
				itemGroup.PATCH("/:id", inventoryHandler.Patch)
				itemGroup.POST("/:id/copy_item", inventoryHandler.CopyItem)
				itemGroup.POST("/:id/use_tracking_for_all", inventoryHandler.UseTrackingForAll)
			}
			trackingGroup := apiGroup.Group("/tracking")
			{
				trackingGroup.POST("", inventoryHandler.CreateTracking)
				trackingGroup.GET("/:id", inventoryHandler.GetTracking)
				trackingGroup.PATCH("/:id", inventoryHandler.PatchTracking)
			}
		}

		if services.Exports != nil {
			exportHandler := handlers.NewExportHandler(services.Exports)
			apiGroup.POST("/exports/reconciliation", exportHandler.CreateReconciliationExport)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
