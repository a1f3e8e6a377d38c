// cmd/sweeper/main.go
package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/cheapr/opsboard/internal/config"
	"github.com/cheapr/opsboard/internal/repository/postgres"
	"github.com/cheapr/opsboard/internal/sweeper"
	"github.com/cheapr/opsboard/pkg/logger"
)

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.Server.Mode)

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	s := sweeper.New(
		postgres.NewTrackingRepository(db),
		postgres.NewBuyingOrderRepository(db),
		time.Duration(cfg.Sweeper.IntervalSeconds)*time.Second,
		cfg.Sweeper.BatchSize,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Log.Info().
		Int("interval_seconds", cfg.Sweeper.IntervalSeconds).
		Int("batch_size", cfg.Sweeper.BatchSize).
		Msg("Starting sweeper")

	if err := s.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Log.Fatal().Err(err).Msg("Sweeper stopped")
	}

	logger.Log.Info().Msg("Sweeper exiting")
}
