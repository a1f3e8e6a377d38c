// internal/repository/postgres/inventory_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type inventoryRepository struct {
	db *DB
}

func NewInventoryRepository(db *DB) *inventoryRepository {
	return &inventoryRepository{db: db}
}

const inventoryColumns = `
	id, buying_order_id, product_id, COALESCE(sku, '') AS sku,
	tracking_id, sales_item_id, total_cost, shipping_cost, created_at, updated_at
`

func (r *inventoryRepository) GetItem(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	var item domain.InventoryItem
	err := sqlx.GetContext(ctx, r.db, &item,
		`SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get inventory item: %w", err)
	}

	return &item, nil
}

func (r *inventoryRepository) CopyItem(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	var copy domain.InventoryItem
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var source domain.InventoryItem
		err := sqlx.GetContext(ctx, tx, &source,
			`SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to load source item: %w", err)
		}

		// Copies keep the cost fields and product but start untracked and
		// unmatched; they exist to split a multi-unit line into units.
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO inventory_items (
				buying_order_id, product_id, sku, total_cost, shipping_cost, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
			RETURNING `+inventoryColumns+`
		`, source.BuyingOrderID, source.ProductID, source.SKU, source.TotalCost, source.ShippingCost).
			StructScan(&copy)
		if err != nil {
			return fmt.Errorf("failed to copy inventory item: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &copy, nil
}

func (r *inventoryRepository) UseTrackingForAll(ctx context.Context, id int64) (int, error) {
	var updated int
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var source domain.InventoryItem
		err := sqlx.GetContext(ctx, tx, &source,
			`SELECT `+inventoryColumns+` FROM inventory_items WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to load source item: %w", err)
		}
		if source.TrackingID == nil {
			return domain.NewRuleError("NO_TRACKING", "item has no tracking to propagate")
		}

		result, err := tx.ExecContext(ctx, `
			UPDATE inventory_items
			SET tracking_id = $1, updated_at = NOW()
			WHERE buying_order_id = $2 AND id <> $3
		`, *source.TrackingID, source.BuyingOrderID, source.ID)
		if err != nil {
			return fmt.Errorf("failed to propagate tracking: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		updated = int(rows)
		return nil
	})
	if err != nil {
		return 0, err
	}

	return updated, nil
}

func (r *inventoryRepository) AttachTracking(ctx context.Context, itemID, trackingID int64) (*domain.InventoryItem, error) {
	var exists bool
	if err := sqlx.GetContext(ctx, r.db, &exists,
		`SELECT EXISTS(SELECT 1 FROM trackings WHERE id = $1)`, trackingID); err != nil {
		return nil, fmt.Errorf("failed to check tracking: %w", err)
	}
	if !exists {
		return nil, domain.ErrNotFound
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE inventory_items SET tracking_id = $2, updated_at = NOW() WHERE id = $1`,
		itemID, trackingID)
	if err != nil {
		return nil, fmt.Errorf("failed to attach tracking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return nil, domain.ErrNotFound
	}

	return r.GetItem(ctx, itemID)
}

func (r *inventoryRepository) UpdateCosts(ctx context.Context, id int64, totalCost, shippingCost *decimal.Decimal) (*domain.InventoryItem, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE inventory_items
		SET total_cost = COALESCE($2, total_cost),
			shipping_cost = COALESCE($3, shipping_cost),
			updated_at = NOW()
		WHERE id = $1
	`, id, totalCost, shippingCost)
	if err != nil {
		return nil, fmt.Errorf("failed to update costs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return nil, domain.ErrNotFound
	}

	return r.GetItem(ctx, id)
}
