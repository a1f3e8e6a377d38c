// internal/service/inventory_service.go
package service

import (
	"context"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/cheapr/opsboard/internal/repository"
)

// InventoryService manages inventory items and their shipment trackings.
type InventoryService struct {
	items     repository.InventoryRepository
	trackings repository.TrackingRepository
}

func NewInventoryService(
	items repository.InventoryRepository,
	trackings repository.TrackingRepository,
) *InventoryService {
	return &InventoryService{
		items:     items,
		trackings: trackings,
	}
}

func (s *InventoryService) GetItem(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	return s.items.GetItem(ctx, id)
}

// CopyItem clones an item within its buying order. The copy carries the
// cost and product fields but no tracking or sales match.
func (s *InventoryService) CopyItem(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	return s.items.CopyItem(ctx, id)
}

// UseTrackingForAll stamps the item's tracking onto every sibling in the
// same buying order and returns how many siblings changed.
func (s *InventoryService) UseTrackingForAll(ctx context.Context, id int64) (int, error) {
	return s.items.UseTrackingForAll(ctx, id)
}

// UpdateCosts patches an item's cost fields; absent fields are untouched.
func (s *InventoryService) UpdateCosts(ctx context.Context, id int64, cmd domain.SetCosts) (*domain.InventoryItem, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return s.items.UpdateCosts(ctx, id, cmd.TotalCost, cmd.ShippingCost)
}

// AttachTracking points an item at an existing tracking record.
func (s *InventoryService) AttachTracking(ctx context.Context, itemID int64, cmd domain.AttachTracking) (*domain.InventoryItem, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return s.items.AttachTracking(ctx, itemID, cmd.TrackingID)
}

// CreateTracking registers a shipment, reusing an existing record when the
// same carrier and number were seen before.
func (s *InventoryService) CreateTracking(ctx context.Context, t *domain.Tracking) (*domain.Tracking, error) {
	if t.TrackingNumber == "" {
		return nil, domain.NewRuleError("INVALID_TRACKING_NUMBER", "tracking number cannot be empty")
	}
	if t.Status != "" && !t.Status.IsValid() {
		return nil, domain.NewRuleError("INVALID_STATUS", "unknown tracking status")
	}

	existing, err := s.trackings.FindTrackingByNumber(ctx, t.Carrier, t.TrackingNumber)
	if err == nil {
		return existing, nil
	}
	if err != domain.ErrNotFound {
		return nil, err
	}

	if err := s.trackings.CreateTracking(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *InventoryService) GetTracking(ctx context.Context, id int64) (*domain.Tracking, error) {
	return s.trackings.GetTracking(ctx, id)
}

// UpdateTracking patches a tracking record's mutable fields.
func (s *InventoryService) UpdateTracking(ctx context.Context, id int64, cmd domain.UpdateTracking) (*domain.Tracking, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return s.trackings.UpdateTracking(ctx, id, cmd)
}
