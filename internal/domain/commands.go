// internal/domain/commands.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Command is a validated, single-purpose edit to an entity. Handlers decode
// PATCH payloads into commands instead of passing loose field maps around.
type Command interface {
	Name() string
	Validate() error
}

// SetDestination routes a buying order to house inventory or dropship
type SetDestination struct {
	Destination Destination
}

func (c SetDestination) Name() string { return "set_destination" }

func (c SetDestination) Validate() error {
	if !c.Destination.IsValid() {
		return NewRuleError("INVALID_DESTINATION", "destination must be House or Dropship")
	}
	return nil
}

// SetVerified toggles a buying order's verified flag
type SetVerified struct {
	Verified bool
}

func (c SetVerified) Name() string { return "set_verified" }

func (c SetVerified) Validate() error { return nil }

// SetCosts updates an inventory item's cost fields; nil leaves a field alone
type SetCosts struct {
	TotalCost    *decimal.Decimal
	ShippingCost *decimal.Decimal
}

func (c SetCosts) Name() string { return "set_costs" }

func (c SetCosts) Validate() error {
	if c.TotalCost == nil && c.ShippingCost == nil {
		return NewRuleError("EMPTY_PATCH", "no cost fields to update")
	}
	if c.TotalCost != nil && c.TotalCost.IsNegative() {
		return NewRuleError("NEGATIVE_COST", "total cost cannot be negative")
	}
	if c.ShippingCost != nil && c.ShippingCost.IsNegative() {
		return NewRuleError("NEGATIVE_COST", "shipping cost cannot be negative")
	}
	return nil
}

// AttachTracking points an inventory or sales item at a tracking record
type AttachTracking struct {
	TrackingID int64
}

func (c AttachTracking) Name() string { return "attach_tracking" }

func (c AttachTracking) Validate() error {
	if c.TrackingID <= 0 {
		return NewRuleError("INVALID_TRACKING", "tracking id must be positive")
	}
	return nil
}

// LinkSale joins a buying order with a selling order
type LinkSale struct {
	BuyingOrderID  int64
	SellingOrderID int64
}

func (c LinkSale) Name() string { return "link_sale" }

func (c LinkSale) Validate() error {
	if c.BuyingOrderID <= 0 {
		return NewRuleError("INVALID_PURCHASE", "purchase id must be positive")
	}
	if c.SellingOrderID <= 0 {
		return NewRuleError("INVALID_SALES", "sales id must be positive")
	}
	return nil
}

// UpdateTracking patches a tracking record's mutable fields
type UpdateTracking struct {
	Carrier        *string
	TrackingNumber *string
	Status         *TrackingStatus
	ETADate        *time.Time
}

func (c UpdateTracking) Name() string { return "update_tracking" }

func (c UpdateTracking) Validate() error {
	if c.Carrier == nil && c.TrackingNumber == nil && c.Status == nil && c.ETADate == nil {
		return NewRuleError("EMPTY_PATCH", "no tracking fields to update")
	}
	if c.Status != nil && !c.Status.IsValid() {
		return NewRuleError("INVALID_STATUS", "unknown tracking status")
	}
	if c.TrackingNumber != nil && *c.TrackingNumber == "" {
		return NewRuleError("INVALID_TRACKING_NUMBER", "tracking number cannot be empty")
	}
	return nil
}
