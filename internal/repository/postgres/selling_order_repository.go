// internal/repository/postgres/selling_order_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type sellingOrderRepository struct {
	db *DB
}

func NewSellingOrderRepository(db *DB) *sellingOrderRepository {
	return &sellingOrderRepository{db: db}
}

const sellingColumns = `
	id, order_date, channel, status, person_id,
	gross_sales, profit, channel_fee, created_at, updated_at
`

func (r *sellingOrderRepository) CreateSellingOrder(ctx context.Context, order *domain.SellingOrder) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		if order.Customer != nil {
			err := tx.QueryRowxContext(ctx, `
				INSERT INTO persons (name, street_1, street_2, city, state, zip)
				VALUES ($1, $2, $3, $4, $5, $6)
				RETURNING id
			`, order.Customer.Name, order.Customer.Street1, order.Customer.Street2,
				order.Customer.City, order.Customer.State, order.Customer.Zip).
				Scan(&order.Customer.ID)
			if err != nil {
				return fmt.Errorf("failed to create customer: %w", err)
			}
			order.PersonID = &order.Customer.ID
		}

		if order.Status == "" {
			order.Status = domain.SellingStatusActive
		}

		err := tx.QueryRowxContext(ctx, `
			INSERT INTO selling_orders (
				order_date, channel, status, person_id, gross_sales, profit, channel_fee,
				created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
			RETURNING id, created_at, updated_at
		`, order.OrderDate, order.Channel, string(order.Status), order.PersonID,
			order.GrossSales, order.Profit, order.ChannelFee).
			Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
		if err != nil {
			return fmt.Errorf("failed to create selling order: %w", err)
		}

		for _, item := range order.Items {
			item.SellingOrderID = order.ID
			err := tx.QueryRowxContext(ctx, `
				INSERT INTO sales_items (
					selling_order_id, inventory_item_id, sub_sku, tracking_id,
					letter_tracking_id, refunded, manager_id, created_at, updated_at
				) VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
				RETURNING id, created_at, updated_at
			`, item.SellingOrderID, item.InventoryItemID, item.SubSKU, item.TrackingID,
				item.LetterTrackingID, item.Refunded, item.ManagerID).
				Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
			if err != nil {
				return fmt.Errorf("failed to create sales item: %w", err)
			}
		}

		return nil
	})
}

func (r *sellingOrderRepository) GetSellingOrder(ctx context.Context, id int64) (*domain.SellingOrder, error) {
	var order domain.SellingOrder
	err := sqlx.GetContext(ctx, r.db, &order,
		`SELECT `+sellingColumns+` FROM selling_orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get selling order: %w", err)
	}

	if err := r.loadChildren(ctx, []*domain.SellingOrder{&order}); err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *sellingOrderRepository) ListSellingOrders(ctx context.Context, limit, offset int) ([]*domain.SellingOrder, error) {
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
		SELECT ` + sellingColumns + `
		FROM selling_orders
		ORDER BY order_date DESC, id DESC
		LIMIT $1 OFFSET $2
	`

	var orders []*domain.SellingOrder
	if err := sqlx.SelectContext(ctx, r.db, &orders, query, limit, offset); err != nil {
		return nil, fmt.Errorf("failed to list selling orders: %w", err)
	}

	if err := r.loadChildren(ctx, orders); err != nil {
		return nil, err
	}

	return orders, nil
}

func (r *sellingOrderRepository) loadChildren(ctx context.Context, orders []*domain.SellingOrder) error {
	if len(orders) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(orders))
	personIDs := make([]int64, 0, len(orders))
	byID := make(map[int64]*domain.SellingOrder, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
		if o.PersonID != nil {
			personIDs = append(personIDs, *o.PersonID)
		}
	}

	var items []*domain.SalesItem
	err := sqlx.SelectContext(ctx, r.db, &items, `
		SELECT id, selling_order_id, inventory_item_id, sub_sku, tracking_id,
			letter_tracking_id, refunded, manager_id, created_at, updated_at
		FROM sales_items
		WHERE selling_order_id = ANY($1)
		ORDER BY id
	`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load sales items: %w", err)
	}
	for _, item := range items {
		if o, ok := byID[item.SellingOrderID]; ok {
			o.Items = append(o.Items, item)
		}
	}

	if len(personIDs) == 0 {
		return nil
	}

	var persons []*domain.Person
	err = sqlx.SelectContext(ctx, r.db, &persons, `
		SELECT id, name, street_1, street_2, city, state, zip
		FROM persons WHERE id = ANY($1)
	`, pq.Array(personIDs))
	if err != nil {
		return fmt.Errorf("failed to load customers: %w", err)
	}

	personByID := make(map[int64]*domain.Person, len(persons))
	for _, p := range persons {
		personByID[p.ID] = p
	}
	for _, o := range orders {
		if o.PersonID != nil {
			o.Customer = personByID[*o.PersonID]
		}
	}

	return nil
}
