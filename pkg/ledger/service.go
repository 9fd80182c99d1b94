// Package ledger implements the points ledger: balance computation,
// redemption, awards and points-funded coupons.
package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medreza/honcho-loyalty-service/pkg/audit"
	"github.com/medreza/honcho-loyalty-service/pkg/metrics"
	"github.com/medreza/honcho-loyalty-service/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// PointValue is the cash value of one awarded point.
	PointValue decimal.Decimal
	// PointsLifetimeMonths is the default expiry of awarded points.
	PointsLifetimeMonths int
}

func DefaultConfig() Config {
	return Config{
		PointValue:           decimal.NewFromFloat(0.01),
		PointsLifetimeMonths: 12,
	}
}

type Service struct {
	store   Store
	cfg     Config
	audit   audit.Sink
	metrics *metrics.Ledger
	now     func() time.Time
}

type Option func(*Service)

func WithAuditSink(sink audit.Sink) Option {
	return func(s *Service) { s.audit = sink }
}

func WithMetrics(m *metrics.Ledger) Option {
	return func(s *Service) { s.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Store, cfg Config, opts ...Option) *Service {
	s := &Service{
		store: store,
		cfg:   cfg,
		audit: audit.Discard{},
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetUserPointBalance computes the user's balance. This is not a pure read:
// credits whose expiry has passed are reclassified as EXPIRED in the same
// transaction.
func (s *Service) GetUserPointBalance(ctx context.Context, userID string) (*models.PointBalance, error) {
	var (
		snap   snapshot
		events []audit.Event
	)
	err := s.store.WithinUserTx(ctx, userID, func(tx Tx) error {
		var err error
		snap, err = s.loadBalance(ctx, tx, userID, &events)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events)
	return &snap.balance, nil
}

func (s *Service) ListUserTransactions(ctx context.Context, userID string) ([]models.PointTransaction, error) {
	var txs []models.PointTransaction
	err := s.store.WithinUserTx(ctx, userID, func(tx Tx) error {
		var err error
		txs, err = tx.ListTransactions(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}

// RedeemPoints debits the user's available points. The balance check and
// the debit run in one per-user transaction so concurrent redemptions
// cannot overdraw the ledger.
func (s *Service) RedeemPoints(ctx context.Context, userID string, in models.RedeemPointsRequest) (*models.PointTransaction, error) {
	if in.Points < 1 {
		return nil, ErrInvalidPoints
	}

	var (
		created *models.PointTransaction
		events  []audit.Event
	)
	err := s.store.WithinUserTx(ctx, userID, func(tx Tx) error {
		if err := s.checkOrder(ctx, tx, in.OrderID); err != nil {
			return err
		}
		var err error
		created, err = s.debit(ctx, tx, userID, in.Points, in.OrderID, in.Description, &events)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events)
	return created, nil
}

// AwardPoints credits points, typically on order completion. Points expire
// after the configured lifetime unless expiresAt is given, which must then
// lie in the future.
func (s *Service) AwardPoints(ctx context.Context, in models.AwardPointsRequest) (*models.PointTransaction, error) {
	if in.ExpiresAt != nil && !in.ExpiresAt.After(s.now()) {
		return nil, ErrInvalidExpiry
	}
	return s.credit(ctx, in.UserID, models.TransactionEarned, in.Points, nil, in.OrderID, in.Description, in.ExpiresAt)
}

// CreatePointTransaction is the admin entry point. Credits may carry an
// explicit monetary value and a past expiry for backdated grants, which
// count as expired from the next read on. REDEEMED goes through the checked
// debit path.
func (s *Service) CreatePointTransaction(ctx context.Context, in models.CreatePointTransactionRequest) (*models.PointTransaction, error) {
	switch in.Type {
	case models.TransactionEarned, models.TransactionAdjusted:
		return s.credit(ctx, in.UserID, in.Type, in.Points, in.MonetaryValue, in.OrderID, in.Description, in.ExpiresAt)
	case models.TransactionRedeemed:
		return s.RedeemPoints(ctx, in.UserID, models.RedeemPointsRequest{
			Points:      in.Points,
			OrderID:     in.OrderID,
			Description: in.Description,
		})
	default:
		return nil, ErrInvalidType
	}
}

// DeletePointTransaction removes a row without any balance checks.
func (s *Service) DeletePointTransaction(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.store.DeleteTransaction(ctx, id)
	if err != nil {
		return err
	}
	event := transactionEvent(audit.KindTransactionDeleted, deleted, s.now())
	event.OriginalType = string(deleted.Type)
	s.emit(ctx, []audit.Event{event})
	return nil
}

// CreateCouponUser mints a coupon for a user, paid for with points. The
// coupon row and the REDEEMED debit commit together or not at all.
func (s *Service) CreateCouponUser(ctx context.Context, in models.CreateCouponUserRequest) (*models.CouponUser, error) {
	if err := validateCoupon(in, s.now()); err != nil {
		return nil, err
	}

	var (
		coupon *models.CouponUser
		events []audit.Event
	)
	err := s.store.WithinUserTx(ctx, in.UserID, func(tx Tx) error {
		snap, err := s.loadBalance(ctx, tx, in.UserID, &events)
		if err != nil {
			return err
		}
		if in.PointsCost > snap.balance.AvailablePoints {
			return ErrInsufficientPoints
		}

		taken, err := tx.CouponCodeExists(ctx, in.Code)
		if err != nil {
			return err
		}
		if taken {
			return ErrCouponCodeTaken
		}

		now := s.now()
		coupon = &models.CouponUser{
			ID:              uuid.New(),
			UserID:          in.UserID,
			Code:            in.Code,
			Discount:        in.Discount,
			DiscountUnit:    in.DiscountUnit,
			MinimumPurchase: in.MinimumPurchase,
			PointsCost:      in.PointsCost,
			ExpiresAt:       in.ExpiresAt,
			CreatedAt:       now,
		}
		if err := tx.InsertCoupon(ctx, coupon); err != nil {
			return err
		}

		if in.PointsCost > 0 {
			desc := fmt.Sprintf("coupon %s", in.Code)
			if _, err := s.debit(ctx, tx, in.UserID, in.PointsCost, nil, desc, &events); err != nil {
				return err
			}
		}

		events = append(events, couponEvent(audit.KindCouponIssued, coupon, now))
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events)
	return coupon, nil
}

// ApplyUserCoupon marks a user's coupon as used. The transition is one-way.
func (s *Service) ApplyUserCoupon(ctx context.Context, userID string, in models.ApplyCouponRequest) (*models.CouponUser, error) {
	var coupon *models.CouponUser
	err := s.store.WithinUserTx(ctx, userID, func(tx Tx) error {
		var err error
		coupon, err = tx.GetCouponByCode(ctx, in.Code)
		if err != nil {
			return err
		}
		if coupon.UserID != userID {
			return ErrCouponNotFound
		}
		if coupon.UsedAt != nil {
			return ErrCouponUsed
		}

		now := s.now()
		if !coupon.ExpiresAt.After(now) {
			return ErrCouponExpired
		}
		if in.PurchaseAmount != nil && in.PurchaseAmount.LessThan(coupon.MinimumPurchase) {
			return ErrMinimumPurchase
		}

		if err := tx.MarkCouponUsed(ctx, coupon.ID, now); err != nil {
			return err
		}
		coupon.UsedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, []audit.Event{couponEvent(audit.KindCouponApplied, coupon, *coupon.UsedAt)})
	return coupon, nil
}

func (s *Service) ListUserCoupons(ctx context.Context, userID string) ([]models.CouponUser, error) {
	var coupons []models.CouponUser
	err := s.store.WithinUserTx(ctx, userID, func(tx Tx) error {
		var err error
		coupons, err = tx.ListCoupons(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return coupons, nil
}

func (s *Service) CreateUser(ctx context.Context, in models.CreateUserRequest) (*models.User, error) {
	user := &models.User{
		ID:        strings.TrimSpace(in.ID),
		Name:      in.Name,
		CreatedAt: s.now(),
	}
	if user.ID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) CreateOrder(ctx context.Context, in models.CreateOrderRequest) (*models.Order, error) {
	if in.Total.IsNegative() {
		return nil, fmt.Errorf("%w: order total must not be negative", ErrValidation)
	}
	order := &models.Order{
		ID:        in.ID,
		UserID:    in.UserID,
		Total:     in.Total,
		CreatedAt: s.now(),
	}
	if err := s.store.CreateOrder(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// SweepExpired reclassifies due credits for every affected user and
// returns the number of users processed. A failure for one user is logged
// and the sweep moves on.
func (s *Service) SweepExpired(ctx context.Context) (int, error) {
	userIDs, err := s.store.UsersWithDueCredits(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("failed to list users with due credits: %w", err)
	}

	swept := 0
	for _, userID := range userIDs {
		if err := ctx.Err(); err != nil {
			return swept, err
		}
		if _, err := s.GetUserPointBalance(ctx, userID); err != nil {
			logrus.WithField("user_id", userID).WithError(err).Error("SweepExpired: Failed to expire points")
			continue
		}
		swept++
	}
	return swept, nil
}

func (s *Service) credit(ctx context.Context, userID string, typ models.TransactionType, points int64,
	value *decimal.Decimal, orderID *string, description string, expiresAt *time.Time) (*models.PointTransaction, error) {
	if points < 1 {
		return nil, ErrInvalidPoints
	}

	now := s.now()
	if expiresAt == nil {
		exp := now.AddDate(0, s.cfg.PointsLifetimeMonths, 0)
		expiresAt = &exp
	}

	monetary := s.cfg.PointValue.Mul(decimal.NewFromInt(points))
	if value != nil {
		if value.IsNegative() {
			return nil, fmt.Errorf("%w: monetary value must not be negative", ErrValidation)
		}
		monetary = *value
	}

	created := &models.PointTransaction{
		ID:            uuid.New(),
		UserID:        userID,
		OrderID:       orderID,
		Points:        points,
		MonetaryValue: monetary,
		Type:          typ,
		Description:   description,
		ExpiresAt:     expiresAt,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := s.store.WithinUserTx(ctx, userID, func(tx Tx) error {
		if err := s.checkOrder(ctx, tx, orderID); err != nil {
			return err
		}
		return tx.InsertTransaction(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	kind := audit.KindPointsAwarded
	if typ == models.TransactionAdjusted {
		kind = audit.KindPointsAdjusted
	}
	s.emit(ctx, []audit.Event{transactionEvent(kind, created, now)})
	return created, nil
}

// debit is shared by RedeemPoints and CreateCouponUser and must run inside
// WithinUserTx.
func (s *Service) debit(ctx context.Context, tx Tx, userID string, points int64,
	orderID *string, description string, events *[]audit.Event) (*models.PointTransaction, error) {
	snap, err := s.loadBalance(ctx, tx, userID, events)
	if err != nil {
		return nil, err
	}
	if points > snap.balance.AvailablePoints {
		return nil, ErrInsufficientPoints
	}

	now := s.now()
	created := &models.PointTransaction{
		ID:            uuid.New(),
		UserID:        userID,
		OrderID:       orderID,
		Points:        points,
		MonetaryValue: snap.redemptionValue(points),
		Type:          models.TransactionRedeemed,
		Description:   description,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.InsertTransaction(ctx, created); err != nil {
		return nil, err
	}
	*events = append(*events, transactionEvent(audit.KindPointsRedeemed, created, now))
	return created, nil
}

func (s *Service) loadBalance(ctx context.Context, tx Tx, userID string, events *[]audit.Event) (snapshot, error) {
	now := s.now()
	txs, err := tx.ListTransactions(ctx, userID)
	if err != nil {
		return snapshot{}, err
	}

	snap := computeBalance(txs, now)
	if len(snap.due) == 0 {
		return snap, nil
	}

	ids := make([]uuid.UUID, 0, len(snap.due))
	for i := range snap.due {
		ids = append(ids, snap.due[i].ID)
	}
	if err := tx.ExpireTransactions(ctx, ids, now); err != nil {
		return snapshot{}, err
	}
	for i := range snap.due {
		event := transactionEvent(audit.KindPointsExpired, &snap.due[i], now)
		event.OriginalType = string(snap.due[i].Type)
		*events = append(*events, event)
	}
	return snap, nil
}

func (s *Service) checkOrder(ctx context.Context, tx Tx, orderID *string) error {
	if orderID == nil {
		return nil
	}
	ok, err := tx.OrderExists(ctx, *orderID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrOrderNotFound
	}
	return nil
}

// emit runs after commit. Audit failures are logged, never returned.
func (s *Service) emit(ctx context.Context, events []audit.Event) {
	for _, event := range events {
		s.metrics.Observe(event.Kind, event.Points)
		if err := s.audit.Record(ctx, event); err != nil {
			logrus.WithFields(logrus.Fields{
				"kind":    event.Kind,
				"user_id": event.UserID,
			}).WithError(err).Warn("Ledger: Failed to record audit event")
		}
	}
}

func validateCoupon(in models.CreateCouponUserRequest, now time.Time) error {
	if in.PointsCost < 0 {
		return ErrInvalidPoints
	}
	if !in.Discount.IsPositive() {
		return ErrInvalidDiscount
	}
	if in.DiscountUnit == models.DiscountPercent && in.Discount.GreaterThan(decimal.NewFromInt(100)) {
		return ErrPercentTooHigh
	}
	if in.DiscountUnit != models.DiscountPercent && in.DiscountUnit != models.DiscountFlat {
		return fmt.Errorf("%w: unknown discount unit %q", ErrValidation, in.DiscountUnit)
	}
	if in.MinimumPurchase.IsNegative() {
		return fmt.Errorf("%w: minimum purchase must not be negative", ErrValidation)
	}
	if !in.ExpiresAt.After(now) {
		return ErrInvalidExpiry
	}
	return nil
}

func transactionEvent(kind string, t *models.PointTransaction, at time.Time) audit.Event {
	event := audit.Event{
		Kind:          kind,
		UserID:        t.UserID,
		TransactionID: t.ID.String(),
		Points:        t.Points,
		MonetaryValue: t.MonetaryValue.String(),
		OccurredAt:    at,
	}
	if t.OrderID != nil {
		event.OrderID = *t.OrderID
	}
	return event
}

func couponEvent(kind string, c *models.CouponUser, at time.Time) audit.Event {
	return audit.Event{
		Kind:       kind,
		UserID:     c.UserID,
		CouponCode: c.Code,
		Points:     c.PointsCost,
		OccurredAt: at,
	}
}
