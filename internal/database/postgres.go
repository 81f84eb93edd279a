// Package database provides the PostgreSQL-backed order store.
package database

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pgx connection pool and verifies it with a ping.
func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Info("database connected", "max_conns", poolCfg.MaxConns)
	return pool, nil
}

// RunMigrations bootstraps the schema. Statements are idempotent so restarts
// and horizontal retries are safe.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS orders (
			id              BIGSERIAL PRIMARY KEY,
			number          TEXT NOT NULL,
			entry_date      TEXT NOT NULL,
			delivery_date   TEXT NOT NULL,
			customer        TEXT NOT NULL DEFAULT '',
			customer_phone  TEXT NOT NULL DEFAULT '',
			customer_city   TEXT NOT NULL DEFAULT '',
			customer_state  TEXT NOT NULL DEFAULT '',
			priority        TEXT NOT NULL DEFAULT 'normal',
			status          TEXT NOT NULL DEFAULT 'pending',
			total_value     TEXT NOT NULL DEFAULT '0.00',
			items_value     TEXT NOT NULL DEFAULT '0.00',
			freight_value   TEXT NOT NULL DEFAULT '0.00',
			payment_type    TEXT NOT NULL DEFAULT '',
			payment_notes   TEXT NOT NULL DEFAULT '',
			shipping_method TEXT NOT NULL DEFAULT '',
			notes           TEXT NOT NULL DEFAULT '',
			finance         BOOLEAN NOT NULL DEFAULT FALSE,
			review          BOOLEAN NOT NULL DEFAULT FALSE,
			printing        BOOLEAN NOT NULL DEFAULT FALSE,
			sewing          BOOLEAN NOT NULL DEFAULT FALSE,
			shipping        BOOLEAN NOT NULL DEFAULT FALSE,
			ready           BOOLEAN NOT NULL DEFAULT FALSE,
			items           JSONB NOT NULL DEFAULT '[]',
			created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_status ON orders(status)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_number ON orders(number)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_entry_date ON orders(entry_date)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_delivery_date ON orders(delivery_date)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders(customer)`,
	}

	for _, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	slog.Info("database migrations applied")
	return nil
}
