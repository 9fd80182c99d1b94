package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/medreza/honcho-loyalty-service/pkg/ledger"
	"github.com/medreza/honcho-loyalty-service/pkg/models"
)

const (
	pgUniqueViolationCode     = "23505"
	pgForeignKeyViolationCode = "23503"
)

// LedgerStore is the Postgres implementation of ledger.Store.
type LedgerStore struct {
	pool *pgxpool.Pool
}

func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// WithinUserTx locks the user's row with FOR UPDATE for the lifetime of the
// transaction, serializing every balance check and debit for that user.
func (s *LedgerStore) WithinUserTx(ctx context.Context, userID string, fn func(tx ledger.Tx) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var id string
	err = tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.ErrUserNotFound
		}
		return fmt.Errorf("failed to lock user: %w", err)
	}

	if err := fn(&pgTx{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *LedgerStore) CreateUser(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, created_at) VALUES ($1, $2, $3)`,
		user.ID, user.Name, user.CreatedAt,
	)
	if err != nil {
		if isPgError(err, pgUniqueViolationCode) {
			return ledger.ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *LedgerStore) CreateOrder(ctx context.Context, order *models.Order) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO orders (id, user_id, total, created_at) VALUES ($1, $2, $3, $4)`,
		order.ID, order.UserID, order.Total, order.CreatedAt,
	)
	if err != nil {
		switch {
		case isPgError(err, pgUniqueViolationCode):
			return ledger.ErrOrderExists
		case isPgError(err, pgForeignKeyViolationCode):
			return ledger.ErrUserNotFound
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (s *LedgerStore) DeleteTransaction(ctx context.Context, id uuid.UUID) (*models.PointTransaction, error) {
	row := s.pool.QueryRow(ctx,
		`DELETE FROM point_transactions WHERE id = $1 RETURNING `+transactionColumns,
		id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ledger.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to delete point transaction: %w", err)
	}
	return t, nil
}

func (s *LedgerStore) UsersWithDueCredits(ctx context.Context, now time.Time) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT user_id FROM point_transactions
		WHERE active AND type IN ('EARNED', 'ADJUSTED') AND expires_at <= $1
		ORDER BY user_id`,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query users with due credits: %w", err)
	}

	userIDs, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("error iterating users with due credits: %w", err)
	}
	return userIDs, nil
}

func isPgError(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// pgTx implements ledger.Tx on top of an open pgx transaction.
type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) OrderExists(ctx context.Context, orderID string) (bool, error) {
	var exists bool
	err := t.tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`, orderID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order: %w", err)
	}
	return exists, nil
}
