package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/medreza/honcho-loyalty-service/pkg/models"
)

// Store is the persistence boundary of the ledger.
//
// WithinUserTx runs fn with exclusive access to one user's ledger: writes
// issued through tx commit together when fn returns nil and are discarded
// otherwise. It fails with ErrUserNotFound when the user does not exist.
type Store interface {
	WithinUserTx(ctx context.Context, userID string, fn func(tx Tx) error) error

	CreateUser(ctx context.Context, user *models.User) error
	CreateOrder(ctx context.Context, order *models.Order) error

	// DeleteTransaction removes a row outright and returns it.
	DeleteTransaction(ctx context.Context, id uuid.UUID) (*models.PointTransaction, error)

	// UsersWithDueCredits lists users holding active credits whose expiry
	// has been reached at now.
	UsersWithDueCredits(ctx context.Context, now time.Time) ([]string, error)
}

// Tx is the set of operations available inside WithinUserTx.
type Tx interface {
	OrderExists(ctx context.Context, orderID string) (bool, error)

	ListTransactions(ctx context.Context, userID string) ([]models.PointTransaction, error)
	InsertTransaction(ctx context.Context, t *models.PointTransaction) error
	// ExpireTransactions flips the rows to type EXPIRED, active false and
	// keeps their previous type in OriginalType.
	ExpireTransactions(ctx context.Context, ids []uuid.UUID, at time.Time) error

	CouponCodeExists(ctx context.Context, code string) (bool, error)
	InsertCoupon(ctx context.Context, c *models.CouponUser) error
	GetCouponByCode(ctx context.Context, code string) (*models.CouponUser, error)
	MarkCouponUsed(ctx context.Context, id uuid.UUID, at time.Time) error
	ListCoupons(ctx context.Context, userID string) ([]models.CouponUser, error)
}
