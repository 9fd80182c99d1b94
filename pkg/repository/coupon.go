package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/medreza/honcho-loyalty-service/pkg/ledger"
	"github.com/medreza/honcho-loyalty-service/pkg/models"
)

const couponColumns = `id, user_id, code, discount, discount_unit, minimum_purchase,
	points_cost, expires_at, used_at, created_at`

func scanCoupon(row pgx.Row) (*models.CouponUser, error) {
	var c models.CouponUser
	err := row.Scan(
		&c.ID, &c.UserID, &c.Code, &c.Discount, &c.DiscountUnit, &c.MinimumPurchase,
		&c.PointsCost, &c.ExpiresAt, &c.UsedAt, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (t *pgTx) CouponCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM coupon_users WHERE code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check coupon code: %w", err)
	}
	return exists, nil
}

func (t *pgTx) InsertCoupon(ctx context.Context, c *models.CouponUser) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO coupon_users (`+couponColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		c.ID, c.UserID, c.Code, c.Discount, string(c.DiscountUnit), c.MinimumPurchase,
		c.PointsCost, c.ExpiresAt, c.UsedAt, c.CreatedAt,
	)
	if err != nil {
		if isPgError(err, pgUniqueViolationCode) {
			return ledger.ErrCouponCodeTaken
		}
		return fmt.Errorf("failed to create coupon: %w", err)
	}
	return nil
}

// GetCouponByCode locks the coupon row until the transaction ends.
func (t *pgTx) GetCouponByCode(ctx context.Context, code string) (*models.CouponUser, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT `+couponColumns+` FROM coupon_users WHERE code = $1 FOR UPDATE`,
		code,
	)
	c, err := scanCoupon(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrCouponNotFound
		}
		return nil, fmt.Errorf("failed to get coupon: %w", err)
	}
	return c, nil
}

func (t *pgTx) MarkCouponUsed(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE coupon_users SET used_at = $2 WHERE id = $1 AND used_at IS NULL`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("failed to mark coupon used: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrCouponUsed
	}
	return nil
}

func (t *pgTx) ListCoupons(ctx context.Context, userID string) ([]models.CouponUser, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+couponColumns+` FROM coupon_users WHERE user_id = $1 ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get coupons: %w", err)
	}
	defer rows.Close()

	var coupons []models.CouponUser
	for rows.Next() {
		c, err := scanCoupon(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan coupon: %w", err)
		}
		coupons = append(coupons, *c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating coupons: %w", err)
	}

	return coupons, nil
}
