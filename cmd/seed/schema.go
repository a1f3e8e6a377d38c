package main

import (
	"fmt"
	"log"

	"github.com/urfave/cli/v2"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS sellers (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		platform TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id BIGSERIAL PRIMARY KEY,
		sku TEXT NOT NULL,
		make TEXT,
		model TEXT,
		mpn TEXT,
		asin TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS persons (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		street_1 TEXT NOT NULL DEFAULT '',
		street_2 TEXT NOT NULL DEFAULT '',
		city TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL DEFAULT '',
		zip TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS trackings (
		id BIGSERIAL PRIMARY KEY,
		carrier TEXT NOT NULL DEFAULT '',
		tracking_number TEXT NOT NULL,
		eta_date TIMESTAMPTZ,
		status TEXT NOT NULL DEFAULT 'NotStarted',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS buying_orders (
		id BIGSERIAL PRIMARY KEY,
		order_date TIMESTAMPTZ NOT NULL,
		seller_id BIGINT REFERENCES sellers(id),
		channel TEXT NOT NULL DEFAULT '',
		destination TEXT NOT NULL DEFAULT '',
		verified BOOLEAN NOT NULL DEFAULT FALSE,
		status TEXT NOT NULL DEFAULT '',
		ship_to_name TEXT NOT NULL DEFAULT '',
		ship_to_zip TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS selling_orders (
		id BIGSERIAL PRIMARY KEY,
		order_date TIMESTAMPTZ NOT NULL,
		channel TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		person_id BIGINT REFERENCES persons(id),
		gross_sales NUMERIC(12,2),
		profit NUMERIC(12,2),
		channel_fee NUMERIC(12,2),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sales_items (
		id BIGSERIAL PRIMARY KEY,
		selling_order_id BIGINT NOT NULL REFERENCES selling_orders(id),
		inventory_item_id BIGINT,
		sub_sku TEXT,
		tracking_id BIGINT REFERENCES trackings(id),
		letter_tracking_id BIGINT REFERENCES trackings(id),
		refunded NUMERIC(12,2),
		manager_id BIGINT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS inventory_items (
		id BIGSERIAL PRIMARY KEY,
		buying_order_id BIGINT NOT NULL REFERENCES buying_orders(id),
		product_id BIGINT REFERENCES products(id),
		sku TEXT,
		tracking_id BIGINT REFERENCES trackings(id),
		sales_item_id BIGINT REFERENCES sales_items(id),
		total_cost NUMERIC(12,2),
		shipping_cost NUMERIC(12,2),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS selling_buying_links (
		id BIGSERIAL PRIMARY KEY,
		buying_order_id BIGINT NOT NULL REFERENCES buying_orders(id),
		selling_order_id BIGINT NOT NULL REFERENCES selling_orders(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (buying_order_id, selling_order_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_inventory_items_buying_order ON inventory_items (buying_order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_items_selling_order ON sales_items (selling_order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_links_buying_order ON selling_buying_links (buying_order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_links_selling_order ON selling_buying_links (selling_order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_selling_orders_person ON selling_orders (person_id)`,
	`CREATE INDEX IF NOT EXISTS idx_trackings_number ON trackings (carrier, tracking_number)`,
	`CREATE INDEX IF NOT EXISTS idx_buying_orders_verified ON buying_orders (verified, updated_at)`,
}

func runSchema(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(c.Context, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}

	log.Printf("schema created: %d statements applied", len(schemaStatements))
	return nil
}

var demoStatements = []string{
	`INSERT INTO sellers (name, platform) VALUES
		('TechSource Wholesale', 'ebay'),
		('PartsDepot', 'amazon'),
		('Liquidation Hub', 'ebay')`,
	`INSERT INTO products (sku, make, model, mpn, asin) VALUES
		('LAP-DEL-5520', 'Dell', 'Latitude 5520', 'LAT5520-i5', 'B09DELL5520'),
		('LAP-LEN-T14', 'Lenovo', 'ThinkPad T14', '20UD000', 'B08LENT14X'),
		('MON-SAM-27', 'Samsung', 'S27A600', 'LS27A600', 'B09SAM27NU')`,
	`INSERT INTO persons (name, street_1, city, state, zip) VALUES
		('Dana Whitfield', '12 Orchard Ln', 'Columbus', 'OH', '43004'),
		('Marcus Bell', '88 Pine St', 'Austin', 'TX', '78701'),
		('Dana Whitfield', '12 Orchard Ln', 'Columbus', 'OH', '43004')`,
	`INSERT INTO buying_orders (order_date, seller_id, channel, destination, ship_to_name, ship_to_zip) VALUES
		(NOW() - INTERVAL '5 days', 1, 'ebay', 'Dropship', 'Dana Whitfield', '43004'),
		(NOW() - INTERVAL '3 days', 2, 'amazon', 'House', '', ''),
		(NOW() - INTERVAL '1 day', 3, 'ebay', '', 'Marcus Bell', '78701')`,
	`INSERT INTO selling_orders (order_date, channel, status, person_id, gross_sales, channel_fee) VALUES
		(NOW() - INTERVAL '6 days', 'ebay', 'active', 1, 449.99, 58.50),
		(NOW() - INTERVAL '4 days', 'ebay', 'active', 2, 189.00, 24.57),
		(NOW() - INTERVAL '2 days', 'ebay', 'canceled', 3, 449.99, 0)`,
	`INSERT INTO sales_items (selling_order_id, sub_sku) VALUES
		(1, 'LAP-DEL-5520'),
		(2, 'MON-SAM-27')`,
	`INSERT INTO inventory_items (buying_order_id, product_id, sku, total_cost, shipping_cost) VALUES
		(1, 1, 'LAP-DEL-5520', 310.00, 12.50),
		(2, 2, 'LAP-LEN-T14', 275.00, NULL),
		(2, 3, 'MON-SAM-27', 140.00, 9.99)`,
}

func runDemo(c *cli.Context) error {
	db, err := dbFrom(c)
	if err != nil {
		return err
	}

	// The dataset references its own rows by id, so it lands whole or not at all.
	tx, err := db.BeginTx(c.Context, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, stmt := range demoStatements {
		if _, err := tx.ExecContext(c.Context, stmt); err != nil {
			tx.Rollback()
			return fmt.Errorf("demo statement failed: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit demo data: %w", err)
	}

	log.Printf("demo data inserted")
	return nil
}
