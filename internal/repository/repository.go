// internal/repository/repository.go
package repository

import (
	"context"
	"time"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/shopspring/decimal"
)

// BuyingOrderRepository manages purchase orders and their fulfillment state
type BuyingOrderRepository interface {
	CreateBuyingOrder(ctx context.Context, order *domain.BuyingOrder) error
	GetBuyingOrder(ctx context.Context, id int64) (*domain.BuyingOrder, error)
	ListBuyingOrders(ctx context.Context, limit, offset int) ([]*domain.BuyingOrder, error)
	SetDestination(ctx context.Context, id int64, dest domain.Destination) (*domain.BuyingOrder, error)

	// Verify re-checks the verify gate inside its transaction; a concurrent
	// unlink between read and write cannot produce a verified-but-unlinked order.
	Verify(ctx context.Context, id int64) (*domain.BuyingOrder, error)
	Unverify(ctx context.Context, id int64) (*domain.BuyingOrder, error)

	ListUnverifiedDropship(ctx context.Context, limit int) ([]*domain.BuyingOrder, error)
	ListVerifiedSince(ctx context.Context, since time.Time) ([]*domain.BuyingOrder, error)
}

// MatchRepository manages purchase-to-sale matching and links
type MatchRepository interface {
	FindMatches(ctx context.Context, buyingOrderID int64) (*domain.MatchCandidates, error)

	// CreateLink is idempotent: linking an already-linked pair reports
	// created=false and leaves the link set unchanged.
	CreateLink(ctx context.Context, buyingOrderID, sellingOrderID int64) (bool, error)
	DeleteLink(ctx context.Context, buyingOrderID, sellingOrderID int64) (bool, error)

	// CreateReplacementAndLink synthesizes a fresh unlinked sales item next to
	// the given one and links its selling order to the purchase, atomically.
	CreateReplacementAndLink(ctx context.Context, salesItemID, buyingOrderID int64) (*domain.SalesItem, error)
}

// SellingOrderRepository manages sales orders
type SellingOrderRepository interface {
	CreateSellingOrder(ctx context.Context, order *domain.SellingOrder) error
	GetSellingOrder(ctx context.Context, id int64) (*domain.SellingOrder, error)
	ListSellingOrders(ctx context.Context, limit, offset int) ([]*domain.SellingOrder, error)
}

// InventoryRepository manages inventory items under buying orders
type InventoryRepository interface {
	GetItem(ctx context.Context, id int64) (*domain.InventoryItem, error)
	CopyItem(ctx context.Context, id int64) (*domain.InventoryItem, error)
	UseTrackingForAll(ctx context.Context, id int64) (int, error)
	AttachTracking(ctx context.Context, itemID, trackingID int64) (*domain.InventoryItem, error)
	UpdateCosts(ctx context.Context, id int64, totalCost, shippingCost *decimal.Decimal) (*domain.InventoryItem, error)
}

// TrackingRepository manages shipment tracking records
type TrackingRepository interface {
	CreateTracking(ctx context.Context, tracking *domain.Tracking) error
	GetTracking(ctx context.Context, id int64) (*domain.Tracking, error)
	FindTrackingByNumber(ctx context.Context, carrier, number string) (*domain.Tracking, error)
	UpdateTracking(ctx context.Context, id int64, cmd domain.UpdateTracking) (*domain.Tracking, error)
	ListOverdue(ctx context.Context, asOf time.Time, limit int) ([]*domain.Tracking, error)
	MarkIssue(ctx context.Context, ids []int64) (int, error)
}

// CatalogRepository serves the seller and product pickers
type CatalogRepository interface {
	ListSellers(ctx context.Context) ([]*domain.Seller, error)
	SearchProducts(ctx context.Context, search string, limit, offset int) ([]*domain.Product, error)
}
