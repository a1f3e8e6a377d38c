// internal/repository/postgres/buying_order_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type buyingOrderRepository struct {
	db *DB
}

func NewBuyingOrderRepository(db *DB) *buyingOrderRepository {
	return &buyingOrderRepository{db: db}
}

func (r *buyingOrderRepository) CreateBuyingOrder(ctx context.Context, order *domain.BuyingOrder) error {
	query := `
		INSERT INTO buying_orders (
			order_date, seller_id, channel, destination, verified, status,
			ship_to_name, ship_to_zip, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRowxContext(ctx, query,
		order.OrderDate,
		order.SellerID,
		order.Channel,
		string(order.Destination),
		order.Verified,
		order.Status,
		order.ShipToName,
		order.ShipToZip,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create buying order: %w", err)
	}

	return nil
}

func (r *buyingOrderRepository) GetBuyingOrder(ctx context.Context, id int64) (*domain.BuyingOrder, error) {
	query := `
		SELECT
			o.id, o.order_date, o.seller_id, COALESCE(s.name, '') AS seller_name,
			o.channel, o.destination, o.verified, o.status,
			o.ship_to_name, o.ship_to_zip, o.created_at, o.updated_at
		FROM buying_orders o
		LEFT JOIN sellers s ON o.seller_id = s.id
		WHERE o.id = $1
	`

	var order domain.BuyingOrder
	if err := sqlx.GetContext(ctx, r.db, &order, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get buying order: %w", err)
	}

	if err := r.loadChildren(ctx, []*domain.BuyingOrder{&order}); err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *buyingOrderRepository) ListBuyingOrders(ctx context.Context, limit, offset int) ([]*domain.BuyingOrder, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	query := `
		SELECT
			o.id, o.order_date, o.seller_id, COALESCE(s.name, '') AS seller_name,
			o.channel, o.destination, o.verified, o.status,
			o.ship_to_name, o.ship_to_zip, o.created_at, o.updated_at
		FROM buying_orders o
		LEFT JOIN sellers s ON o.seller_id = s.id
		ORDER BY o.order_date DESC, o.id DESC
		LIMIT $1 OFFSET $2
	`

	var orders []*domain.BuyingOrder
	if err := sqlx.SelectContext(ctx, r.db, &orders, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list buying orders: %w", err)
	}

	if err := r.loadChildren(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

// loadChildren populates inventory items and selling links for a set of orders
func (r *buyingOrderRepository) loadChildren(ctx context.Context, orders []*domain.BuyingOrder) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(orders))
	byID := make(map[int64]*domain.BuyingOrder, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
	}

	itemQuery := `
		SELECT id, buying_order_id, product_id, COALESCE(sku, '') AS sku,
			tracking_id, sales_item_id, total_cost, shipping_cost, created_at, updated_at
		FROM inventory_items
		WHERE buying_order_id = ANY($1)
		ORDER BY id
	`

	var items []*domain.InventoryItem
	if err := sqlx.SelectContext(ctx, r.db, &items, itemQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to load inventory items: %w", err)
	}
	for _, item := range items {
		if o, ok := byID[item.BuyingOrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}

	linkQuery := `
		SELECT id, buying_order_id, selling_order_id, created_at
		FROM selling_buying_links
		WHERE buying_order_id = ANY($1)
		ORDER BY id
	`

	var links []*domain.SellingBuyingLink
	if err := sqlx.SelectContext(ctx, r.db, &links, linkQuery, pq.Array(ids)); err != nil {
		return fmt.Errorf("failed to load selling links: %w", err)
	}
	for _, link := range links {
		if o, ok := byID[link.BuyingOrderID]; ok {
			o.Links = append(o.Links, link)
		}
	}

	return nil
}

func (r *buyingOrderRepository) SetDestination(ctx context.Context, id int64, dest domain.Destination) (*domain.BuyingOrder, error) {
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		order, err := r.lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}
		if order.Verified {
			return domain.NewRuleError("ORDER_VERIFIED", "cannot change destination of a verified order")
		}
		if order.Destination == dest {
			return nil
		}

		// Routing targets the destination's entry state; the link count only
		// refines the state afterwards, through pick and remove.
		target := domain.StateHouse
		if dest == domain.DestinationDropship {
			target = domain.StateDropshipUnlinked
		}
		if !domain.StateOf(order).CanTransitionTo(target) {
			return domain.NewRuleError("INVALID_TRANSITION",
				"destination change not allowed from the current fulfillment state")
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE buying_orders SET destination = $2, updated_at = NOW() WHERE id = $1`,
			id, string(dest)); err != nil {
			return fmt.Errorf("failed to set destination: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetBuyingOrder(ctx, id)
}

func (r *buyingOrderRepository) Verify(ctx context.Context, id int64) (*domain.BuyingOrder, error) {
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		order, err := r.lockOrder(ctx, tx, id)
		if err != nil {
			return err
		}

		// Gate re-check under the row lock: a concurrent unlink cannot slip
		// between the client's read and this write.
		if err := domain.VerifyGate(order); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`UPDATE buying_orders SET verified = TRUE, updated_at = NOW() WHERE id = $1`, id); err != nil {
			return fmt.Errorf("failed to mark order verified: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetBuyingOrder(ctx, id)
}

func (r *buyingOrderRepository) Unverify(ctx context.Context, id int64) (*domain.BuyingOrder, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE buying_orders SET verified = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to unverify order: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return nil, domain.ErrNotFound
	}

	return r.GetBuyingOrder(ctx, id)
}

// lockOrder loads an order with its links and items under FOR UPDATE
func (r *buyingOrderRepository) lockOrder(ctx context.Context, tx *sqlx.Tx, id int64) (*domain.BuyingOrder, error) {
	var order domain.BuyingOrder
	err := sqlx.GetContext(ctx, tx, &order, `
		SELECT id, order_date, seller_id, '' AS seller_name, channel, destination,
			verified, status, ship_to_name, ship_to_zip, created_at, updated_at
		FROM buying_orders WHERE id = $1 FOR UPDATE
	`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock buying order: %w", err)
	}

	if err := sqlx.SelectContext(ctx, tx, &order.Links, `
		SELECT id, buying_order_id, selling_order_id, created_at
		FROM selling_buying_links WHERE buying_order_id = $1
	`, id); err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}

	if err := sqlx.SelectContext(ctx, tx, &order.Items, `
		SELECT id, buying_order_id, product_id, COALESCE(sku, '') AS sku,
			tracking_id, sales_item_id, total_cost, shipping_cost, created_at, updated_at
		FROM inventory_items WHERE buying_order_id = $1
	`, id); err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}

	return &order, nil
}

func (r *buyingOrderRepository) ListUnverifiedDropship(ctx context.Context, limit int) ([]*domain.BuyingOrder, error) {
	if limit <= 0 {
		limit = 100
	}

	query := `
		SELECT
			o.id, o.order_date, o.seller_id, COALESCE(s.name, '') AS seller_name,
			o.channel, o.destination, o.verified, o.status,
			o.ship_to_name, o.ship_to_zip, o.created_at, o.updated_at
		FROM buying_orders o
		LEFT JOIN sellers s ON o.seller_id = s.id
		WHERE o.destination = 'Dropship'
			AND o.verified = FALSE
			AND NOT EXISTS (
				SELECT 1 FROM selling_buying_links l WHERE l.buying_order_id = o.id
			)
		ORDER BY o.order_date ASC
		LIMIT $1
	`

	var orders []*domain.BuyingOrder
	if err := sqlx.SelectContext(ctx, r.db, &orders, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list unlinked dropship orders: %w", err)
	}

	return orders, nil
}

func (r *buyingOrderRepository) ListVerifiedSince(ctx context.Context, since time.Time) ([]*domain.BuyingOrder, error) {
	query := `
		SELECT
			o.id, o.order_date, o.seller_id, COALESCE(s.name, '') AS seller_name,
			o.channel, o.destination, o.verified, o.status,
			o.ship_to_name, o.ship_to_zip, o.created_at, o.updated_at
		FROM buying_orders o
		LEFT JOIN sellers s ON o.seller_id = s.id
		WHERE o.verified = TRUE AND o.updated_at >= $1
		ORDER BY o.updated_at ASC
	`

	var orders []*domain.BuyingOrder
	if err := sqlx.SelectContext(ctx, r.db, &orders, query, since); err != nil {
		return nil, fmt.Errorf("failed to list verified orders: %w", err)
	}

	if err := r.loadChildren(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}
