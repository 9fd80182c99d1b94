// Package audit records an append-only trail of ledger changes.
package audit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	KindPointsAwarded      = "points.awarded"
	KindPointsAdjusted     = "points.adjusted"
	KindPointsRedeemed     = "points.redeemed"
	KindPointsExpired      = "points.expired"
	KindTransactionDeleted = "transaction.deleted"
	KindCouponIssued       = "coupon.issued"
	KindCouponApplied      = "coupon.applied"
)

// Event is a single ledger change. MonetaryValue is kept as a string so the
// exact decimal survives any backend.
type Event struct {
	Kind          string    `json:"kind" bson:"kind"`
	UserID        string    `json:"user_id" bson:"user_id"`
	TransactionID string    `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	OrderID       string    `json:"order_id,omitempty" bson:"order_id,omitempty"`
	CouponCode    string    `json:"coupon_code,omitempty" bson:"coupon_code,omitempty"`
	Points        int64     `json:"points" bson:"points"`
	MonetaryValue string    `json:"monetary_value,omitempty" bson:"monetary_value,omitempty"`
	OriginalType  string    `json:"original_type,omitempty" bson:"original_type,omitempty"`
	OccurredAt    time.Time `json:"occurred_at" bson:"occurred_at"`
}

type Sink interface {
	Record(ctx context.Context, event Event) error
}

// LogSink writes events to a logrus logger. Used when no Mongo URI is set.
type LogSink struct {
	logger logrus.FieldLogger
}

func NewLogSink(logger logrus.FieldLogger) *LogSink {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &LogSink{logger: logger}
}

func (s *LogSink) Record(_ context.Context, event Event) error {
	fields := logrus.Fields{
		"kind":    event.Kind,
		"user_id": event.UserID,
		"points":  event.Points,
	}
	if event.TransactionID != "" {
		fields["transaction_id"] = event.TransactionID
	}
	if event.OrderID != "" {
		fields["order_id"] = event.OrderID
	}
	if event.CouponCode != "" {
		fields["coupon_code"] = event.CouponCode
	}
	if event.MonetaryValue != "" {
		fields["monetary_value"] = event.MonetaryValue
	}
	if event.OriginalType != "" {
		fields["original_type"] = event.OriginalType
	}
	s.logger.WithFields(fields).Info("Audit: ledger event")
	return nil
}

// Discard drops every event.
type Discard struct{}

func (Discard) Record(context.Context, Event) error { return nil }
