package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/medreza/honcho-loyalty-service/pkg/models"
)

const transactionColumns = `id, user_id, order_id, points, monetary_value, type, original_type,
	description, expires_at, active, created_at, updated_at`

func scanTransaction(row pgx.Row) (*models.PointTransaction, error) {
	var t models.PointTransaction
	err := row.Scan(
		&t.ID, &t.UserID, &t.OrderID, &t.Points, &t.MonetaryValue, &t.Type, &t.OriginalType,
		&t.Description, &t.ExpiresAt, &t.Active, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *pgTx) ListTransactions(ctx context.Context, userID string) ([]models.PointTransaction, error) {
	rows, err := t.tx.Query(ctx,
		`SELECT `+transactionColumns+` FROM point_transactions
		WHERE user_id = $1 ORDER BY created_at DESC, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get point transactions: %w", err)
	}
	defer rows.Close()

	var txs []models.PointTransaction
	for rows.Next() {
		pt, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan point transaction: %w", err)
		}
		txs = append(txs, *pt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating point transactions: %w", err)
	}

	return txs, nil
}

func (t *pgTx) InsertTransaction(ctx context.Context, pt *models.PointTransaction) error {
	_, err := t.tx.Exec(ctx, `
		INSERT INTO point_transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		pt.ID, pt.UserID, pt.OrderID, pt.Points, pt.MonetaryValue, string(pt.Type), string(pt.OriginalType),
		pt.Description, pt.ExpiresAt, pt.Active, pt.CreatedAt, pt.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert point transaction: %w", err)
	}
	return nil
}

func (t *pgTx) ExpireTransactions(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	_, err := t.tx.Exec(ctx, `
		UPDATE point_transactions
		SET original_type = type, type = 'EXPIRED', active = FALSE, updated_at = $2
		WHERE id = ANY($1::uuid[]) AND active`,
		ids, at,
	)
	if err != nil {
		return fmt.Errorf("failed to expire point transactions: %w", err)
	}
	return nil
}
