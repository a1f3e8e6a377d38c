// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cheapr/opsboard/internal/api"
	"github.com/cheapr/opsboard/internal/cache"
	"github.com/cheapr/opsboard/internal/config"
	"github.com/cheapr/opsboard/internal/repository/postgres"
	"github.com/cheapr/opsboard/internal/service"
	"github.com/cheapr/opsboard/internal/storage"
	"github.com/cheapr/opsboard/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize cache; a disabled cache degrades to a no-op, not an error
	matchCache, err := cache.NewMatchCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Match cache unavailable, continuing without it")
		matchCache = cache.NewNoopMatchCache()
	}

	// Initialize repositories and services
	orders := postgres.NewBuyingOrderRepository(db)
	matches := postgres.NewMatchRepository(db)
	items := postgres.NewInventoryRepository(db)
	trackings := postgres.NewTrackingRepository(db)
	sales := postgres.NewSellingOrderRepository(db)
	catalog := postgres.NewCatalogRepository(db)

	services := &api.Services{
		Reconcile: service.NewReconcileService(orders, matches, matchCache),
		Inventory: service.NewInventoryService(items, trackings),
		Sales:     service.NewSalesService(sales, catalog),
	}

	// Exports need object storage; without it the endpoint is simply absent
	if cfg.Storage.Enabled {
		store, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Object storage unavailable, exports disabled")
		} else {
			services.Exports = service.NewExportService(orders, store)
		}
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins, cfg.Server.APIToken)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
