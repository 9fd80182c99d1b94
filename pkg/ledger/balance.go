package ledger

import (
	"time"

	"github.com/medreza/honcho-loyalty-service/pkg/models"
	"github.com/shopspring/decimal"
)

type snapshot struct {
	balance models.PointBalance
	// liveCredits is the sum of unexpired credit points, the base for the
	// per-point cash value of a redemption.
	liveCredits int64
	// due holds active credits whose expiry has been reached; the caller
	// reclassifies them.
	due []models.PointTransaction
}

// computeBalance folds a user's rows into a balance as seen at now.
//
// Expired credits, whether reclassified earlier or due on this read, count
// toward TotalPoints and ExpiredPoints. Inactive rows of any other type are
// ignored. REDEEMED rows never expire.
func computeBalance(txs []models.PointTransaction, now time.Time) snapshot {
	snap := snapshot{balance: models.PointBalance{MonetaryValue: decimal.Zero}}
	b := &snap.balance

	for i := range txs {
		t := txs[i]
		switch {
		case t.Type == models.TransactionExpired:
			b.TotalPoints += t.Points
			b.ExpiredPoints += t.Points
		case !t.Active:
			continue
		case t.Type.IsCredit() && t.ExpiredAt(now):
			b.TotalPoints += t.Points
			b.ExpiredPoints += t.Points
			snap.due = append(snap.due, t)
		case t.Type.IsCredit():
			b.TotalPoints += t.Points
			b.AvailablePoints += t.Points
			b.MonetaryValue = b.MonetaryValue.Add(t.MonetaryValue)
			snap.liveCredits += t.Points
		case t.Type == models.TransactionRedeemed:
			b.RedeemedPoints += t.Points
			b.AvailablePoints -= t.Points
		}
	}

	if b.AvailablePoints < 0 {
		b.AvailablePoints = 0
	}
	return snap
}

// redemptionValue is the cash equivalent of spending points, proportional
// to the value of the live credits. Zero when there are none.
func (s snapshot) redemptionValue(points int64) decimal.Decimal {
	if s.liveCredits <= 0 {
		return decimal.Zero
	}
	return s.balance.MonetaryValue.
		Div(decimal.NewFromInt(s.liveCredits)).
		Mul(decimal.NewFromInt(points)).
		Round(4)
}
