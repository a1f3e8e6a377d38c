package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDestination(t *testing.T) {
	tests := []struct {
		name  string
		label string
		want  Destination
		ok    bool
	}{
		{"house lowercase", "house", DestinationHouse, true},
		{"house mixed case", "House", DestinationHouse, true},
		{"dropship uppercase", "DROPSHIP", DestinationDropship, true},
		{"padded", "  dropship  ", DestinationDropship, true},
		{"empty", "", DestinationUnset, false},
		{"unknown", "warehouse", DestinationUnset, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDestination(tt.label)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestStateOf(t *testing.T) {
	linked := []*SellingBuyingLink{{ID: 1, BuyingOrderID: 1, SellingOrderID: 2}}

	tests := []struct {
		name  string
		order *BuyingOrder
		want  FulfillmentState
	}{
		{"no destination", &BuyingOrder{}, StateUnset},
		{"house", &BuyingOrder{Destination: DestinationHouse}, StateHouse},
		{"dropship without links", &BuyingOrder{Destination: DestinationDropship}, StateDropshipUnlinked},
		{"dropship with links", &BuyingOrder{Destination: DestinationDropship, Links: linked}, StateDropshipLinked},
		{"verified wins", &BuyingOrder{Destination: DestinationHouse, Verified: true}, StateVerified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StateOf(tt.order))
		})
	}
}

func TestCanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    FulfillmentState
		to      FulfillmentState
		allowed bool
	}{
		{"unset to house", StateUnset, StateHouse, true},
		{"unset to dropship", StateUnset, StateDropshipUnlinked, true},
		{"unset cannot verify", StateUnset, StateVerified, false},
		{"house to verified", StateHouse, StateVerified, true},
		{"house reroute to dropship", StateHouse, StateDropshipUnlinked, true},
		{"dropship unlinked cannot verify", StateDropshipUnlinked, StateVerified, false},
		{"dropship linked to verified", StateDropshipLinked, StateVerified, true},
		{"linked back to unlinked", StateDropshipLinked, StateDropshipUnlinked, true},
		{"verified is reversible", StateVerified, StateDropshipLinked, true},
		{"verified cannot unset", StateVerified, StateUnset, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestVerifyGate(t *testing.T) {
	item := func(matched bool) *InventoryItem {
		it := &InventoryItem{ID: 10, BuyingOrderID: 1}
		if matched {
			salesItemID := int64(77)
			it.SalesItemID = &salesItemID
		}
		return it
	}
	link := &SellingBuyingLink{ID: 1, BuyingOrderID: 1, SellingOrderID: 2}

	tests := []struct {
		name     string
		order    *BuyingOrder
		wantCode string
	}{
		{
			name:     "no destination",
			order:    &BuyingOrder{},
			wantCode: "NO_DESTINATION",
		},
		{
			name:  "house needs nothing else",
			order: &BuyingOrder{Destination: DestinationHouse},
		},
		{
			name:     "house already verified",
			order:    &BuyingOrder{Destination: DestinationHouse, Verified: true},
			wantCode: "ALREADY_VERIFIED",
		},
		{
			name:     "dropship without links",
			order:    &BuyingOrder{Destination: DestinationDropship, Items: []*InventoryItem{item(true)}},
			wantCode: "NO_SELLING_LINK",
		},
		{
			name: "dropship with unmatched item",
			order: &BuyingOrder{
				Destination: DestinationDropship,
				Links:       []*SellingBuyingLink{link},
				Items:       []*InventoryItem{item(true), item(false)},
			},
			wantCode: "UNMATCHED_ITEM",
		},
		{
			name: "dropship fully matched",
			order: &BuyingOrder{
				Destination: DestinationDropship,
				Links:       []*SellingBuyingLink{link},
				Items:       []*InventoryItem{item(true)},
			},
		},
		{
			name: "dropship linked with no items",
			order: &BuyingOrder{
				Destination: DestinationDropship,
				Links:       []*SellingBuyingLink{link},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifyGate(tt.order)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ruleErr *RuleError
			require.ErrorAs(t, err, &ruleErr)
			assert.Equal(t, tt.wantCode, ruleErr.Code)
		})
	}
}
