package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/cheapr/opsboard/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestSweepFlagsOverdueShipments(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	yesterday := time.Now().Add(-24 * time.Hour)
	nextWeek := time.Now().Add(7 * 24 * time.Hour)

	overdueTransit := store.AddTracking(&domain.Tracking{
		TrackingNumber: "1Z001", Carrier: "UPS",
		Status: domain.TrackingTransit, ETADate: timePtr(yesterday),
	})
	overdueNotStarted := store.AddTracking(&domain.Tracking{
		TrackingNumber: "1Z002", Carrier: "UPS",
		Status: domain.TrackingNotStarted, ETADate: timePtr(yesterday),
	})
	delivered := store.AddTracking(&domain.Tracking{
		TrackingNumber: "1Z003", Carrier: "UPS",
		Status: domain.TrackingDelivered, ETADate: timePtr(yesterday),
	})
	onTime := store.AddTracking(&domain.Tracking{
		TrackingNumber: "1Z004", Carrier: "UPS",
		Status: domain.TrackingTransit, ETADate: timePtr(nextWeek),
	})
	noETA := store.AddTracking(&domain.Tracking{
		TrackingNumber: "1Z005", Carrier: "UPS",
		Status: domain.TrackingTransit,
	})

	s := New(store, store, time.Minute, 100)
	require.NoError(t, s.Sweep(ctx))

	wantIssue := []int64{overdueTransit.ID, overdueNotStarted.ID}
	for _, id := range wantIssue {
		tr, err := store.GetTracking(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.TrackingIssue, tr.Status, "tracking %d", id)
	}

	untouched := map[int64]domain.TrackingStatus{
		delivered.ID: domain.TrackingDelivered,
		onTime.ID:    domain.TrackingTransit,
		noETA.ID:     domain.TrackingTransit,
	}
	for id, want := range untouched {
		tr, err := store.GetTracking(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, tr.Status, "tracking %d", id)
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	store.AddTracking(&domain.Tracking{
		TrackingNumber: "1Z001", Carrier: "UPS",
		Status:  domain.TrackingTransit,
		ETADate: timePtr(time.Now().Add(-time.Hour)),
	})

	s := New(store, store, time.Minute, 100)
	require.NoError(t, s.Sweep(ctx))
	// Issue trackings are no longer open, so a second pass finds nothing.
	require.NoError(t, s.Sweep(ctx))
}

func TestRunStopsOnCancel(t *testing.T) {
	store := memory.NewStore()
	s := New(store, store, 10*time.Millisecond, 100)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := s.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
