package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionEarned   TransactionType = "EARNED"
	TransactionRedeemed TransactionType = "REDEEMED"
	TransactionExpired  TransactionType = "EXPIRED"
	TransactionAdjusted TransactionType = "ADJUSTED"
)

// IsCredit reports whether the type adds points to a balance.
func (t TransactionType) IsCredit() bool {
	return t == TransactionEarned || t == TransactionAdjusted
}

type DiscountUnit string

const (
	DiscountFlat    DiscountUnit = "FLAT"
	DiscountPercent DiscountUnit = "PERCENT"
)

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

type Order struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}

// PointTransaction is one ledger row. Points is always positive; the
// direction is implied by Type.
type PointTransaction struct {
	ID            uuid.UUID       `json:"id"`
	UserID        string          `json:"user_id"`
	OrderID       *string         `json:"order_id,omitempty"`
	Points        int64           `json:"points"`
	MonetaryValue decimal.Decimal `json:"monetary_value"`
	Type          TransactionType `json:"type"`
	OriginalType  TransactionType `json:"original_type,omitempty"`
	Description   string          `json:"description"`
	ExpiresAt     *time.Time      `json:"expires_at,omitempty"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ExpiredAt reports whether an expiry is set and has been reached at now.
func (t *PointTransaction) ExpiredAt(now time.Time) bool {
	return t.ExpiresAt != nil && !t.ExpiresAt.After(now)
}

// PointBalance is computed from the ledger on every read and never stored.
type PointBalance struct {
	TotalPoints     int64           `json:"total_points"`
	AvailablePoints int64           `json:"available_points"`
	PendingPoints   int64           `json:"pending_points"`
	ExpiredPoints   int64           `json:"expired_points"`
	RedeemedPoints  int64           `json:"redeemed_points"`
	MonetaryValue   decimal.Decimal `json:"monetary_value"`
}

type CouponUser struct {
	ID              uuid.UUID       `json:"id"`
	UserID          string          `json:"user_id"`
	Code            string          `json:"code"`
	Discount        decimal.Decimal `json:"discount"`
	DiscountUnit    DiscountUnit    `json:"discount_unit"`
	MinimumPurchase decimal.Decimal `json:"minimum_purchase"`
	PointsCost      int64           `json:"points_cost"`
	ExpiresAt       time.Time       `json:"expires_at"`
	UsedAt          *time.Time      `json:"used_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

type CreateUserRequest struct {
	ID   string `json:"id" binding:"required,max=255"`
	Name string `json:"name" binding:"max=255"`
}

type CreateOrderRequest struct {
	ID     string          `json:"id" binding:"required,max=255"`
	UserID string          `json:"user_id" binding:"required"`
	Total  decimal.Decimal `json:"total"`
}

type RedeemPointsRequest struct {
	Points      int64   `json:"points" binding:"required,min=1"`
	OrderID     *string `json:"order_id"`
	Description string  `json:"description" binding:"max=500"`
}

type AwardPointsRequest struct {
	UserID      string     `json:"user_id" binding:"required"`
	Points      int64      `json:"points" binding:"required,min=1"`
	OrderID     *string    `json:"order_id"`
	Description string     `json:"description" binding:"max=500"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

type CreatePointTransactionRequest struct {
	UserID        string           `json:"user_id" binding:"required"`
	Points        int64            `json:"points" binding:"required,min=1"`
	Type          TransactionType  `json:"type" binding:"required,oneof=EARNED ADJUSTED REDEEMED"`
	MonetaryValue *decimal.Decimal `json:"monetary_value"`
	OrderID       *string          `json:"order_id"`
	Description   string           `json:"description" binding:"max=500"`
	ExpiresAt     *time.Time       `json:"expires_at"`
}

type CreateCouponUserRequest struct {
	UserID          string          `json:"user_id"`
	Code            string          `json:"code" binding:"required,min=3,max=64"`
	Discount        decimal.Decimal `json:"discount"`
	DiscountUnit    DiscountUnit    `json:"discount_unit" binding:"required,oneof=FLAT PERCENT"`
	MinimumPurchase decimal.Decimal `json:"minimum_purchase"`
	PointsCost      int64           `json:"points_cost" binding:"min=0"`
	ExpiresAt       time.Time       `json:"expires_at" binding:"required"`
}

type ApplyCouponRequest struct {
	Code           string           `json:"code" binding:"required"`
	PurchaseAmount *decimal.Decimal `json:"purchase_amount"`
}
