package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS stores (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL,
    phone                TEXT NOT NULL DEFAULT '',
    weekly_schedule      JSONB NOT NULL DEFAULT '{}',
    special_dates        JSONB NOT NULL DEFAULT '[]',
    delivery_schedule    JSONB NOT NULL DEFAULT '[]',
    same_day_cutoff_time TEXT NOT NULL DEFAULT '',
    allow_scheduling     BOOLEAN NOT NULL DEFAULT TRUE,
    minimum_order        NUMERIC(12, 2) NOT NULL DEFAULT 0,
    delivery_fee         NUMERIC(12, 2) NOT NULL DEFAULT 0,
    created_at           TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS products (
    id                        TEXT PRIMARY KEY,
    store_id                  TEXT NOT NULL REFERENCES stores (id) ON DELETE CASCADE,
    category_id               TEXT NOT NULL DEFAULT '',
    name                      TEXT NOT NULL,
    description               TEXT NOT NULL DEFAULT '',
    price                     NUMERIC(12, 2) NOT NULL,
    sale_price                NUMERIC(12, 2),
    max_included_quantity     INTEGER,
    excess_unit_price         NUMERIC(12, 2),
    daily_stock               INTEGER,
    current_stock             INTEGER,
    stock_last_reset          DATE,
    allow_same_day_scheduling BOOLEAN DEFAULT TRUE,
    is_available              BOOLEAN NOT NULL DEFAULT TRUE
);
CREATE INDEX IF NOT EXISTS products_store_id_idx ON products (store_id);

CREATE TABLE IF NOT EXISTS addon_categories (
    id          TEXT PRIMARY KEY,
    product_id  TEXT NOT NULL REFERENCES products (id) ON DELETE CASCADE,
    name        TEXT NOT NULL,
    is_required BOOLEAN NOT NULL DEFAULT FALSE,
    is_multiple BOOLEAN NOT NULL DEFAULT FALSE,
    min_select  INTEGER NOT NULL DEFAULT 0,
    max_select  INTEGER NOT NULL DEFAULT 1,
    sort_order  INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS addon_items (
    id           TEXT PRIMARY KEY,
    category_id  TEXT NOT NULL REFERENCES addon_categories (id) ON DELETE CASCADE,
    name         TEXT NOT NULL,
    price        NUMERIC(12, 2) NOT NULL DEFAULT 0,
    is_available BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS orders (
    id             TEXT PRIMARY KEY,
    store_id       TEXT NOT NULL REFERENCES stores (id),
    customer_name  TEXT NOT NULL,
    customer_phone TEXT NOT NULL,
    customer_email TEXT NOT NULL DEFAULT '',
    fulfillment    TEXT NOT NULL,
    address        JSONB,
    scheduled_for  TEXT NOT NULL DEFAULT '',
    payment_method TEXT NOT NULL,
    subtotal       NUMERIC(12, 2) NOT NULL,
    delivery_fee   NUMERIC(12, 2) NOT NULL,
    total          NUMERIC(12, 2) NOT NULL,
    status         TEXT NOT NULL,
    notes          TEXT NOT NULL DEFAULT '',
    created_at     TIMESTAMPTZ NOT NULL,
    confirmed_at   TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS orders_created_at_idx ON orders (created_at);

CREATE TABLE IF NOT EXISTS order_items (
    order_id     TEXT NOT NULL REFERENCES orders (id) ON DELETE CASCADE,
    position     INTEGER NOT NULL,
    product_id   TEXT NOT NULL,
    product_name TEXT NOT NULL,
    quantity     INTEGER NOT NULL,
    unit_price   NUMERIC(12, 4) NOT NULL,
    base_cost    NUMERIC(12, 4) NOT NULL,
    addons_total NUMERIC(12, 4) NOT NULL,
    line_total   NUMERIC(12, 4) NOT NULL,
    addons       JSONB NOT NULL DEFAULT '[]',
    note         TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (order_id, position)
);

CREATE TABLE IF NOT EXISTS order_events (
    id           BIGSERIAL PRIMARY KEY,
    topic        TEXT NOT NULL,
    order_id     TEXT NOT NULL,
    payload      JSONB NOT NULL,
    published_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS order_events_order_id_idx ON order_events (order_id);
`

// Migrate creates the tables used by the repositories when they are missing.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

// Connect opens a pool and checks connectivity.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return pool, nil
}
