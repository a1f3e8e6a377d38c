package domain

import "github.com/shopspring/decimal"

// Rollup returns an item's landed cost: total_cost + shipping_cost,
// treating absent fields as zero
func Rollup(item *InventoryItem) decimal.Decimal {
	sum := decimal.Zero
	if item.TotalCost != nil {
		sum = sum.Add(*item.TotalCost)
	}
	if item.ShippingCost != nil {
		sum = sum.Add(*item.ShippingCost)
	}
	return sum
}

// FormatRollup renders the landed cost as currency with two decimals.
// Returns the empty string when both inputs are absent.
func FormatRollup(item *InventoryItem) string {
	if item.TotalCost == nil && item.ShippingCost == nil {
		return ""
	}
	return "$" + Rollup(item).StringFixed(2)
}
