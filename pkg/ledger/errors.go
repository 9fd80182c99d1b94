package ledger

import "errors"

// Error kinds. Every specific error below wraps exactly one of them.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

var (
	ErrUserNotFound        = newError(ErrNotFound, "user not found")
	ErrOrderNotFound       = newError(ErrNotFound, "order not found")
	ErrCouponNotFound      = newError(ErrNotFound, "coupon not found")
	ErrTransactionNotFound = newError(ErrNotFound, "point transaction not found")

	ErrUserExists      = newError(ErrConflict, "user already exists")
	ErrOrderExists     = newError(ErrConflict, "order already exists")
	ErrCouponCodeTaken = newError(ErrConflict, "coupon code already exists")
	ErrCouponUsed      = newError(ErrConflict, "coupon already used")

	ErrInsufficientPoints = newError(ErrValidation, "not enough points")
	ErrInvalidPoints      = newError(ErrValidation, "points must be at least 1")
	ErrInvalidDiscount    = newError(ErrValidation, "discount must be greater than zero")
	ErrPercentTooHigh     = newError(ErrValidation, "percent discount must not exceed 100")
	ErrInvalidType        = newError(ErrValidation, "transaction type cannot be created directly")
	ErrCouponExpired      = newError(ErrValidation, "coupon has expired")
	ErrMinimumPurchase    = newError(ErrValidation, "purchase amount is below the coupon minimum")
	ErrInvalidExpiry      = newError(ErrValidation, "expiry must be in the future")
)

type kindError struct {
	kind error
	msg  string
}

func newError(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

func (e *kindError) Error() string { return e.msg }

func (e *kindError) Unwrap() error { return e.kind }
