package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrations = []struct {
	name string
	sql  string
}{
	{"users table", `
		CREATE TABLE IF NOT EXISTS users (
			id VARCHAR(255) PRIMARY KEY,
			name VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`},
	{"orders table", `
		CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR(255) PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			total NUMERIC(14, 2) NOT NULL DEFAULT 0 CHECK (total >= 0),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		)
	`},
	{"point_transactions table", `
		CREATE TABLE IF NOT EXISTS point_transactions (
			id UUID PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			order_id VARCHAR(255) REFERENCES orders(id) ON DELETE SET NULL,
			points BIGINT NOT NULL CHECK (points >= 1),
			monetary_value NUMERIC(18, 4) NOT NULL DEFAULT 0,
			type VARCHAR(16) NOT NULL CHECK (type IN ('EARNED', 'REDEEMED', 'EXPIRED', 'ADJUSTED')),
			original_type VARCHAR(16) NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			expires_at TIMESTAMP WITH TIME ZONE,
			active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`},
	{"point_transactions user index", `
		CREATE INDEX IF NOT EXISTS idx_point_transactions_user ON point_transactions(user_id, created_at DESC)
	`},
	{"point_transactions expiry index", `
		CREATE INDEX IF NOT EXISTS idx_point_transactions_due ON point_transactions(expires_at)
		WHERE active AND type IN ('EARNED', 'ADJUSTED')
	`},
	{"coupon_users table", `
		CREATE TABLE IF NOT EXISTS coupon_users (
			id UUID PRIMARY KEY,
			user_id VARCHAR(255) NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			code VARCHAR(64) UNIQUE NOT NULL,
			discount NUMERIC(14, 2) NOT NULL CHECK (discount > 0),
			discount_unit VARCHAR(8) NOT NULL CHECK (discount_unit IN ('FLAT', 'PERCENT')),
			minimum_purchase NUMERIC(14, 2) NOT NULL DEFAULT 0,
			points_cost BIGINT NOT NULL DEFAULT 0 CHECK (points_cost >= 0),
			expires_at TIMESTAMP WITH TIME ZONE NOT NULL,
			used_at TIMESTAMP WITH TIME ZONE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CHECK (discount_unit <> 'PERCENT' OR discount <= 100)
		)
	`},
	{"coupon_users user index", `
		CREATE INDEX IF NOT EXISTS idx_coupon_users_user ON coupon_users(user_id)
	`},
}

// RunMigrations is idempotent.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("failed to create %s: %w", m.name, err)
		}
	}
	return nil
}
