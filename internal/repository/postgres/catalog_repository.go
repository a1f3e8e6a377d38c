// internal/repository/postgres/catalog_repository.go
package postgres

import (
	"context"
	"fmt"

	"github.com/cheapr/opsboard/internal/domain"
	"github.com/jmoiron/sqlx"
)

type catalogRepository struct {
	db *DB
}

func NewCatalogRepository(db *DB) *catalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ListSellers(ctx context.Context) ([]*domain.Seller, error) {
	var sellers []*domain.Seller
	err := sqlx.SelectContext(ctx, r.db, &sellers, `
		SELECT id, name, COALESCE(platform, '') AS platform, created_at, updated_at
		FROM sellers
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sellers: %w", err)
	}

	return sellers, nil
}

func (r *catalogRepository) SearchProducts(ctx context.Context, search string, limit, offset int) ([]*domain.Product, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	var products []*domain.Product
	err := sqlx.SelectContext(ctx, r.db, &products, `
		SELECT id, sku, COALESCE(make, '') AS make, COALESCE(model, '') AS model,
			COALESCE(mpn, '') AS mpn, COALESCE(asin, '') AS asin
		FROM products
		WHERE $1 = ''
			OR sku ILIKE '%' || $1 || '%'
			OR model ILIKE '%' || $1 || '%'
			OR mpn ILIKE '%' || $1 || '%'
		ORDER BY sku
		LIMIT $2 OFFSET $3
	`, search, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}

	return products, nil
}
