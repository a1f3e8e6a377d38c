package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestRollup(t *testing.T) {
	tests := []struct {
		name string
		item *InventoryItem
		want string
	}{
		{"both absent", &InventoryItem{}, "0"},
		{"total only", &InventoryItem{TotalCost: dec("310.00")}, "310"},
		{"shipping only", &InventoryItem{ShippingCost: dec("12.50")}, "12.5"},
		{"both present", &InventoryItem{TotalCost: dec("310.00"), ShippingCost: dec("12.50")}, "322.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Rollup(tt.item).String())
		})
	}
}

func TestFormatRollup(t *testing.T) {
	tests := []struct {
		name string
		item *InventoryItem
		want string
	}{
		{"both absent renders empty", &InventoryItem{}, ""},
		{"total only", &InventoryItem{TotalCost: dec("310.00")}, "$310.00"},
		{"zero cost still renders", &InventoryItem{TotalCost: dec("0")}, "$0.00"},
		{"sum with cents", &InventoryItem{TotalCost: dec("140.00"), ShippingCost: dec("9.99")}, "$149.99"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatRollup(tt.item))
		})
	}
}
