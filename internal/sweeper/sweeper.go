// Package sweeper runs the periodic housekeeping pass: open shipments past
// their ETA are flagged as issues, and dropship orders still waiting for a
// selling link are reported.
package sweeper

import (
	"context"
	"time"

	"github.com/cheapr/opsboard/internal/repository"
	"github.com/rs/zerolog/log"
)

type Sweeper struct {
	trackings repository.TrackingRepository
	orders    repository.BuyingOrderRepository
	interval  time.Duration
	batchSize int
}

func New(
	trackings repository.TrackingRepository,
	orders repository.BuyingOrderRepository,
	interval time.Duration,
	batchSize int,
) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if batchSize <= 0 {
		batchSize = 200
	}
	return &Sweeper{
		trackings: trackings,
		orders:    orders,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run sweeps on a fixed interval until the context is canceled. The first
// sweep happens immediately.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.Sweep(ctx); err != nil {
			log.Error().Err(err).Msg("sweep failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Sweep performs one housekeeping pass.
func (s *Sweeper) Sweep(ctx context.Context) error {
	flagged, err := s.flagOverdue(ctx)
	if err != nil {
		return err
	}

	waiting, err := s.orders.ListUnverifiedDropship(ctx, s.batchSize)
	if err != nil {
		return err
	}
	for _, order := range waiting {
		log.Info().
			Int64("buying_order", order.ID).
			Time("order_date", order.OrderDate).
			Msg("dropship order awaiting selling link")
	}

	log.Info().
		Int("flagged_trackings", flagged).
		Int("unlinked_dropship", len(waiting)).
		Msg("sweep complete")
	return nil
}

func (s *Sweeper) flagOverdue(ctx context.Context) (int, error) {
	overdue, err := s.trackings.ListOverdue(ctx, time.Now(), s.batchSize)
	if err != nil {
		return 0, err
	}
	if len(overdue) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(overdue))
	for _, t := range overdue {
		ids = append(ids, t.ID)
		log.Warn().
			Int64("tracking", t.ID).
			Str("carrier", t.Carrier).
			Str("number", t.TrackingNumber).
			Time("eta", *t.ETADate).
			Msg("shipment past ETA")
	}

	return s.trackings.MarkIssue(ctx, ids)
}
