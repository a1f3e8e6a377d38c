// internal/domain/fulfillment.go
package domain

import "strings"

// Destination says where a purchase ships: to house inventory or straight
// to a customer (dropship). Empty means the operator has not decided yet.
type Destination string

const (
	DestinationUnset    Destination = ""
	DestinationHouse    Destination = "House"
	DestinationDropship Destination = "Dropship"
)

// ParseDestination returns the destination for a label (case-insensitive)
func ParseDestination(label string) (Destination, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "house":
		return DestinationHouse, true
	case "dropship":
		return DestinationDropship, true
	}
	return DestinationUnset, false
}

// IsValid checks the destination is one of the known values
func (d Destination) IsValid() bool {
	return d == DestinationHouse || d == DestinationDropship
}

func (d Destination) String() string {
	return string(d)
}

// FulfillmentState is the derived reconciliation state of a buying order
type FulfillmentState string

const (
	StateUnset            FulfillmentState = "unset"
	StateHouse            FulfillmentState = "house"
	StateDropshipUnlinked FulfillmentState = "dropship_unlinked"
	StateDropshipLinked   FulfillmentState = "dropship_linked"
	StateVerified         FulfillmentState = "verified"
)

// StateOf derives the fulfillment state from the order's fields
func StateOf(order *BuyingOrder) FulfillmentState {
	if order.Verified {
		return StateVerified
	}
	switch order.Destination {
	case DestinationHouse:
		return StateHouse
	case DestinationDropship:
		if len(order.Links) > 0 {
			return StateDropshipLinked
		}
		return StateDropshipUnlinked
	}
	return StateUnset
}

// CanTransitionTo checks whether a state change is allowed
func (s FulfillmentState) CanTransitionTo(target FulfillmentState) bool {
	switch s {
	case StateUnset:
		return target == StateHouse || target == StateDropshipUnlinked
	case StateHouse:
		return target == StateVerified || target == StateDropshipUnlinked || target == StateUnset
	case StateDropshipUnlinked:
		return target == StateDropshipLinked || target == StateHouse || target == StateUnset
	case StateDropshipLinked:
		return target == StateDropshipUnlinked || target == StateVerified
	case StateVerified:
		return target == StateHouse || target == StateDropshipLinked
	}
	return false
}

// VerifyGate checks the preconditions for marking a buying order verified.
// House orders only need a destination; dropship orders need at least one
// selling link and every inventory item matched to a sales item.
func VerifyGate(order *BuyingOrder) error {
	if order.Verified {
		return NewRuleError("ALREADY_VERIFIED", "order is already verified")
	}

	switch order.Destination {
	case DestinationHouse:
		return nil
	case DestinationDropship:
		if len(order.Links) == 0 {
			return NewRuleError("NO_SELLING_LINK", "dropship order has no linked selling order")
		}
		for _, item := range order.Items {
			if item.SalesItemID == nil {
				return NewRuleError("UNMATCHED_ITEM", "dropship order has inventory items without a sales match")
			}
		}
		return nil
	}

	return NewRuleError("NO_DESTINATION", "destination must be set before verifying")
}
