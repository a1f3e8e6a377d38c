// internal/domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Seller represents a marketplace seller a purchase is placed with
type Seller struct {
	ID        int64     `json:"pk" db:"id"`
	Name      string    `json:"name" db:"name"`
	Platform  string    `json:"platform" db:"platform"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Product represents a catalog SKU, independent of any order
type Product struct {
	ID        int64     `json:"pk" db:"id"`
	SKU       string    `json:"sku" db:"sku"`
	Make      string    `json:"make" db:"make"`
	Model     string    `json:"model" db:"model"`
	MPN       string    `json:"mpn" db:"mpn"`
	ASIN      string    `json:"asin" db:"asin"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Person represents a sales order customer with their shipping address
type Person struct {
	ID      int64  `json:"pk" db:"id"`
	Name    string `json:"name" db:"name"`
	Street1 string `json:"street_1" db:"street_1"`
	Street2 string `json:"street_2" db:"street_2"`
	City    string `json:"city" db:"city"`
	State   string `json:"state" db:"state"`
	Zip     string `json:"zip" db:"zip"`
}

// Tracking represents a shipment tracking record; may be shared across
// sibling inventory items of one order via use_tracking_for_all
type Tracking struct {
	ID             int64          `json:"pk" db:"id"`
	Carrier        string         `json:"carrier" db:"carrier"`
	TrackingNumber string         `json:"tracking_number" db:"tracking_number"`
	ETADate        *time.Time     `json:"eta_date" db:"eta_date"`
	Status         TrackingStatus `json:"status" db:"status"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// BuyingOrder represents a purchase order placed with a seller
type BuyingOrder struct {
	ID          int64       `json:"pk" db:"id"`
	OrderDate   time.Time   `json:"order_date" db:"order_date"`
	SellerID    *int64      `json:"seller" db:"seller_id"`
	SellerName  string      `json:"seller_name" db:"seller_name"`
	Channel     string      `json:"channel" db:"channel"`
	Destination Destination `json:"destination" db:"destination"`
	Verified    bool        `json:"verified" db:"verified"`
	Status      string      `json:"status" db:"status"`
	ShipToName  string      `json:"ship_to_name" db:"ship_to_name"`
	ShipToZip   string      `json:"ship_to_zip" db:"ship_to_zip"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`

	Items []*InventoryItem     `json:"inventory_items" db:"-"`
	Links []*SellingBuyingLink `json:"selling_buying" db:"-"`
}

// InventoryItem represents one purchased unit. It belongs to exactly one
// buying order for its lifetime; splitting a multi-unit line is done by
// copying the item, never by reassignment.
type InventoryItem struct {
	ID            int64            `json:"pk" db:"id"`
	BuyingOrderID int64            `json:"buying_order" db:"buying_order_id"`
	ProductID     *int64           `json:"product" db:"product_id"`
	SKU           string           `json:"sku" db:"sku"`
	TrackingID    *int64           `json:"tracking" db:"tracking_id"`
	SalesItemID   *int64           `json:"itemsales" db:"sales_item_id"`
	TotalCost     *decimal.Decimal `json:"total_cost" db:"total_cost"`
	ShippingCost  *decimal.Decimal `json:"shipping_cost" db:"shipping_cost"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

// SellingOrder represents a sales order from a marketplace channel.
// The financial aggregates are computed by this service, never by clients.
type SellingOrder struct {
	ID         int64            `json:"pk" db:"id"`
	OrderDate  time.Time        `json:"order_date" db:"order_date"`
	Channel    string           `json:"channel" db:"channel"`
	Status     SellingStatus    `json:"status" db:"status"`
	PersonID   *int64           `json:"person" db:"person_id"`
	GrossSales *decimal.Decimal `json:"gross_sales" db:"gross_sales"`
	Profit     *decimal.Decimal `json:"profit" db:"profit"`
	ChannelFee *decimal.Decimal `json:"channel_fee" db:"channel_fee"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at" db:"updated_at"`

	Customer *Person      `json:"customer" db:"-"`
	Items    []*SalesItem `json:"sales_items" db:"-"`
}

// SalesItem represents one sold unit under a selling order
type SalesItem struct {
	ID               int64            `json:"pk" db:"id"`
	SellingOrderID   int64            `json:"selling" db:"selling_order_id"`
	InventoryItemID  *int64           `json:"item" db:"inventory_item_id"`
	SubSKU           *string          `json:"sub_sku" db:"sub_sku"`
	TrackingID       *int64           `json:"tracking" db:"tracking_id"`
	LetterTrackingID *int64           `json:"letter_tracking" db:"letter_tracking_id"`
	Refunded         *decimal.Decimal `json:"refunded" db:"refunded"`
	ManagerID        *int64           `json:"manager" db:"manager_id"`
	CreatedAt        time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at" db:"updated_at"`
}

// SellingBuyingLink joins a buying order to a selling order. Dropship
// fulfillment may satisfy one purchase with multiple sales or vice versa.
// Links are created and destroyed whole, never edited.
type SellingBuyingLink struct {
	ID             int64     `json:"pk" db:"id"`
	BuyingOrderID  int64     `json:"purchase" db:"buying_order_id"`
	SellingOrderID int64     `json:"sales" db:"selling_order_id"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// MatchCandidates is the result of a match search for a buying order:
// selling orders whose customer name exactly matches the purchase's
// ship-to name (best) or whose zip matches (other)
type MatchCandidates struct {
	Best  []*SellingOrder `json:"best"`
	Other []*SellingOrder `json:"other"`
}

// SellingStatus is the lifecycle status of a selling order
type SellingStatus string

const (
	SellingStatusActive   SellingStatus = "active"
	SellingStatusShipped  SellingStatus = "shipped"
	SellingStatusRefunded SellingStatus = "refunded"
	SellingStatusCanceled SellingStatus = "canceled"
)

// IsCanceled reports whether the order is excluded from matching
func (s SellingStatus) IsCanceled() bool {
	return s == SellingStatusCanceled
}
