package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/medreza/honcho-loyalty-service/pkg/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func row(typ models.TransactionType, points int64, active bool, expiresAt *time.Time) models.PointTransaction {
	return models.PointTransaction{
		ID:            uuid.New(),
		UserID:        "u1",
		Points:        points,
		MonetaryValue: decimal.NewFromInt(points).Div(decimal.NewFromInt(100)),
		Type:          typ,
		ExpiresAt:     expiresAt,
		Active:        active,
	}
}

func TestComputeBalance(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	t.Run("empty ledger", func(t *testing.T) {
		snap := computeBalance(nil, now)
		assert.Equal(t, models.PointBalance{MonetaryValue: decimal.Zero}, snap.balance)
		assert.Empty(t, snap.due)
	})

	t.Run("credits and debits", func(t *testing.T) {
		snap := computeBalance([]models.PointTransaction{
			row(models.TransactionEarned, 70, true, nil),
			row(models.TransactionAdjusted, 30, true, &future),
			row(models.TransactionRedeemed, 40, true, nil),
		}, now)

		b := snap.balance
		assert.Equal(t, int64(100), b.TotalPoints)
		assert.Equal(t, int64(60), b.AvailablePoints)
		assert.Equal(t, int64(40), b.RedeemedPoints)
		assert.Equal(t, int64(0), b.ExpiredPoints)
		assert.Equal(t, int64(0), b.PendingPoints)
		assert.True(t, decimal.NewFromInt(1).Equal(b.MonetaryValue), "got %s", b.MonetaryValue)
		assert.Equal(t, int64(100), snap.liveCredits)
	})

	t.Run("due credits are reported and counted as expired", func(t *testing.T) {
		due := row(models.TransactionEarned, 50, true, &past)
		snap := computeBalance([]models.PointTransaction{due}, now)

		require.Len(t, snap.due, 1)
		assert.Equal(t, due.ID, snap.due[0].ID)
		assert.Equal(t, int64(50), snap.balance.TotalPoints)
		assert.Equal(t, int64(50), snap.balance.ExpiredPoints)
		assert.Equal(t, int64(0), snap.balance.AvailablePoints)
		assert.True(t, snap.balance.MonetaryValue.IsZero())
	})

	t.Run("expiry at exactly now is due", func(t *testing.T) {
		snap := computeBalance([]models.PointTransaction{row(models.TransactionEarned, 5, true, &now)}, now)
		assert.Len(t, snap.due, 1)
	})

	t.Run("previously expired rows keep counting", func(t *testing.T) {
		expired := row(models.TransactionExpired, 20, false, &past)
		expired.OriginalType = models.TransactionEarned
		snap := computeBalance([]models.PointTransaction{expired}, now)

		assert.Empty(t, snap.due)
		assert.Equal(t, int64(20), snap.balance.ExpiredPoints)
		assert.Equal(t, int64(20), snap.balance.TotalPoints)
	})

	t.Run("inactive rows are ignored", func(t *testing.T) {
		snap := computeBalance([]models.PointTransaction{
			row(models.TransactionEarned, 10, false, nil),
			row(models.TransactionRedeemed, 10, false, nil),
		}, now)
		assert.Equal(t, models.PointBalance{MonetaryValue: decimal.Zero}, snap.balance)
	})

	t.Run("redeemed rows never expire", func(t *testing.T) {
		snap := computeBalance([]models.PointTransaction{
			row(models.TransactionEarned, 10, true, nil),
			row(models.TransactionRedeemed, 4, true, &past),
		}, now)
		assert.Empty(t, snap.due)
		assert.Equal(t, int64(6), snap.balance.AvailablePoints)
	})

	t.Run("available is clamped at zero", func(t *testing.T) {
		snap := computeBalance([]models.PointTransaction{
			row(models.TransactionEarned, 10, true, nil),
			row(models.TransactionRedeemed, 25, true, nil),
		}, now)
		assert.Equal(t, int64(0), snap.balance.AvailablePoints)
		assert.Equal(t, int64(25), snap.balance.RedeemedPoints)
	})
}

func TestRedemptionValue(t *testing.T) {
	snap := snapshot{
		balance:     models.PointBalance{MonetaryValue: decimal.RequireFromString("3.00")},
		liveCredits: 300,
	}
	assert.Equal(t, "0.4", snap.redemptionValue(40).String())

	empty := snapshot{balance: models.PointBalance{MonetaryValue: decimal.Zero}}
	assert.True(t, empty.redemptionValue(10).IsZero())
}
