// internal/repository/postgres/match_repository.go
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/jmoiron/sqlx"
)

type matchRepository struct {
	db *DB
}

func NewMatchRepository(db *DB) *matchRepository {
	return &matchRepository{db: db}
}

const matchSellingColumns = `
	so.id, so.order_date, so.channel, so.status, so.person_id,
	so.gross_sales, so.profit, so.channel_fee, so.created_at, so.updated_at
`

func (r *matchRepository) FindMatches(ctx context.Context, buyingOrderID int64) (*domain.MatchCandidates, error) {
	var target struct {
		ShipToName string `db:"ship_to_name"`
		ShipToZip  string `db:"ship_to_zip"`
	}
	err := sqlx.GetContext(ctx, r.db, &target,
		`SELECT ship_to_name, ship_to_zip FROM buying_orders WHERE id = $1`, buyingOrderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load buying order: %w", err)
	}

	candidates := &domain.MatchCandidates{
		Best:  []*domain.SellingOrder{},
		Other: []*domain.SellingOrder{},
	}

	bestQuery := `
		SELECT ` + matchSellingColumns + `
		FROM selling_orders so
		JOIN persons p ON so.person_id = p.id
		WHERE so.status <> 'canceled'
			AND $1 <> ''
			AND LOWER(p.name) = LOWER($1)
		ORDER BY so.order_date DESC
	`
	if err := sqlx.SelectContext(ctx, r.db, &candidates.Best, bestQuery, target.ShipToName); err != nil {
		return nil, fmt.Errorf("failed to query name matches: %w", err)
	}

	otherQuery := `
		SELECT ` + matchSellingColumns + `
		FROM selling_orders so
		JOIN persons p ON so.person_id = p.id
		WHERE so.status <> 'canceled'
			AND $2 <> ''
			AND p.zip = $2
			AND ($1 = '' OR LOWER(p.name) <> LOWER($1))
		ORDER BY so.order_date DESC
	`
	if err := sqlx.SelectContext(ctx, r.db, &candidates.Other, otherQuery, target.ShipToName, target.ShipToZip); err != nil {
		return nil, fmt.Errorf("failed to query zip matches: %w", err)
	}

	if err := r.loadCustomers(ctx, append(candidates.Best, candidates.Other...)); err != nil {
		return nil, err
	}

	return candidates, nil
}

func (r *matchRepository) loadCustomers(ctx context.Context, orders []*domain.SellingOrder) error {
	for _, order := range orders {
		if order.PersonID == nil {
			continue
		}
		var person domain.Person
		err := sqlx.GetContext(ctx, r.db, &person,
			`SELECT id, name, street_1, street_2, city, state, zip FROM persons WHERE id = $1`,
			*order.PersonID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return fmt.Errorf("failed to load customer: %w", err)
		}
		order.Customer = &person
	}
	return nil
}

func (r *matchRepository) CreateLink(ctx context.Context, buyingOrderID, sellingOrderID int64) (bool, error) {
	var created bool
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var status domain.SellingStatus
		err := sqlx.GetContext(ctx, tx, &status,
			`SELECT status FROM selling_orders WHERE id = $1`, sellingOrderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to load selling order: %w", err)
		}
		if status.IsCanceled() {
			return domain.NewRuleError("CANCELED_ORDER", "cannot link a canceled selling order")
		}

		var exists bool
		if err := sqlx.GetContext(ctx, tx, &exists,
			`SELECT EXISTS(SELECT 1 FROM buying_orders WHERE id = $1)`, buyingOrderID); err != nil {
			return fmt.Errorf("failed to check buying order: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO selling_buying_links (buying_order_id, selling_order_id, created_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (buying_order_id, selling_order_id) DO NOTHING
		`, buyingOrderID, sellingOrderID)
		if err != nil {
			return fmt.Errorf("failed to create link: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		created = rows > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	return created, nil
}

func (r *matchRepository) DeleteLink(ctx context.Context, buyingOrderID, sellingOrderID int64) (bool, error) {
	var deleted bool
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		// Verified orders keep their link set frozen until unverified.
		var verified bool
		err := sqlx.GetContext(ctx, tx, &verified,
			`SELECT verified FROM buying_orders WHERE id = $1 FOR UPDATE`, buyingOrderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to lock buying order: %w", err)
		}
		if verified {
			return domain.NewRuleError("ORDER_VERIFIED", "cannot unlink a verified order; unverify first")
		}

		result, err := tx.ExecContext(ctx, `
			DELETE FROM selling_buying_links
			WHERE buying_order_id = $1 AND selling_order_id = $2
		`, buyingOrderID, sellingOrderID)
		if err != nil {
			return fmt.Errorf("failed to delete link: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		}
		deleted = rows > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	return deleted, nil
}

func (r *matchRepository) CreateReplacementAndLink(ctx context.Context, salesItemID, buyingOrderID int64) (*domain.SalesItem, error) {
	var replacement domain.SalesItem
	err := r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		var source domain.SalesItem
		err := sqlx.GetContext(ctx, tx, &source, `
			SELECT id, selling_order_id, inventory_item_id, sub_sku, tracking_id,
				letter_tracking_id, refunded, manager_id, created_at, updated_at
			FROM sales_items WHERE id = $1 FOR UPDATE
		`, salesItemID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to load sales item: %w", err)
		}

		var exists bool
		if err := sqlx.GetContext(ctx, tx, &exists,
			`SELECT EXISTS(SELECT 1 FROM buying_orders WHERE id = $1)`, buyingOrderID); err != nil {
			return fmt.Errorf("failed to check buying order: %w", err)
		}
		if !exists {
			return domain.ErrNotFound
		}

		// The replacement mirrors the sold line but starts unmatched: no
		// inventory link, no tracking, no refund.
		err = tx.QueryRowxContext(ctx, `
			INSERT INTO sales_items (selling_order_id, sub_sku, manager_id, created_at, updated_at)
			VALUES ($1, $2, $3, NOW(), NOW())
			RETURNING id, selling_order_id, inventory_item_id, sub_sku, tracking_id,
				letter_tracking_id, refunded, manager_id, created_at, updated_at
		`, source.SellingOrderID, source.SubSKU, source.ManagerID).StructScan(&replacement)
		if err != nil {
			return fmt.Errorf("failed to create replacement item: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO selling_buying_links (buying_order_id, selling_order_id, created_at)
			VALUES ($1, $2, NOW())
			ON CONFLICT (buying_order_id, selling_order_id) DO NOTHING
		`, buyingOrderID, source.SellingOrderID); err != nil {
			return fmt.Errorf("failed to link replacement: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &replacement, nil
}
