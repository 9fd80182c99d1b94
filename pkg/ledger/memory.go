package ledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/medreza/honcho-loyalty-service/pkg/models"
)

// MemoryStore keeps the ledger in process memory. One mutex serializes all
// transactions; each transaction works on a copy of the state that replaces
// the original only when it succeeds. The copy covers every row, so each
// operation costs O(rows); use it for tests and local runs, not production
// volumes.
type MemoryStore struct {
	mu    sync.Mutex
	state memState
}

type memState struct {
	seq          int64
	users        map[string]models.User
	orders       map[string]models.Order
	transactions map[uuid.UUID]memRow[models.PointTransaction]
	coupons      map[uuid.UUID]memRow[models.CouponUser]
}

// memRow carries an insertion sequence to keep listings stable when
// timestamps collide.
type memRow[T any] struct {
	seq int64
	val T
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: memState{
		users:        make(map[string]models.User),
		orders:       make(map[string]models.Order),
		transactions: make(map[uuid.UUID]memRow[models.PointTransaction]),
		coupons:      make(map[uuid.UUID]memRow[models.CouponUser]),
	}}
}

func (s *MemoryStore) WithinUserTx(ctx context.Context, userID string, fn func(tx Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.users[userID]; !ok {
		return ErrUserNotFound
	}

	work := s.state.clone()
	if err := fn(&memTx{state: &work}); err != nil {
		return err
	}
	s.state = work
	return nil
}

func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.users[user.ID]; ok {
		return ErrUserExists
	}
	s.state.users[user.ID] = *user
	return nil
}

func (s *MemoryStore) CreateOrder(_ context.Context, order *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.state.users[order.UserID]; !ok {
		return ErrUserNotFound
	}
	if _, ok := s.state.orders[order.ID]; ok {
		return ErrOrderExists
	}
	s.state.orders[order.ID] = *order
	return nil
}

func (s *MemoryStore) DeleteTransaction(_ context.Context, id uuid.UUID) (*models.PointTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.state.transactions[id]
	if !ok {
		return nil, ErrTransactionNotFound
	}
	delete(s.state.transactions, id)
	t := row.val
	return &t, nil
}

func (s *MemoryStore) UsersWithDueCredits(_ context.Context, now time.Time) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{})
	var users []string
	for _, row := range s.state.transactions {
		t := row.val
		if !t.Active || !t.Type.IsCredit() || !t.ExpiredAt(now) {
			continue
		}
		if _, ok := seen[t.UserID]; ok {
			continue
		}
		seen[t.UserID] = struct{}{}
		users = append(users, t.UserID)
	}
	sort.Strings(users)
	return users, nil
}

// TransactionCount returns the number of ledger rows across all users.
func (s *MemoryStore) TransactionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.transactions)
}

func (st memState) clone() memState {
	out := memState{
		seq:          st.seq,
		users:        make(map[string]models.User, len(st.users)),
		orders:       make(map[string]models.Order, len(st.orders)),
		transactions: make(map[uuid.UUID]memRow[models.PointTransaction], len(st.transactions)),
		coupons:      make(map[uuid.UUID]memRow[models.CouponUser], len(st.coupons)),
	}
	for k, v := range st.users {
		out.users[k] = v
	}
	for k, v := range st.orders {
		out.orders[k] = v
	}
	for k, v := range st.transactions {
		out.transactions[k] = v
	}
	for k, v := range st.coupons {
		out.coupons[k] = v
	}
	return out
}

type memTx struct {
	state *memState
}

func (t *memTx) OrderExists(_ context.Context, orderID string) (bool, error) {
	_, ok := t.state.orders[orderID]
	return ok, nil
}

func (t *memTx) ListTransactions(_ context.Context, userID string) ([]models.PointTransaction, error) {
	var rows []memRow[models.PointTransaction]
	for _, row := range t.state.transactions {
		if row.val.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	out := make([]models.PointTransaction, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.val)
	}
	return out, nil
}

func (t *memTx) InsertTransaction(_ context.Context, pt *models.PointTransaction) error {
	t.state.seq++
	t.state.transactions[pt.ID] = memRow[models.PointTransaction]{seq: t.state.seq, val: *pt}
	return nil
}

func (t *memTx) ExpireTransactions(_ context.Context, ids []uuid.UUID, at time.Time) error {
	for _, id := range ids {
		row, ok := t.state.transactions[id]
		if !ok {
			continue
		}
		row.val.OriginalType = row.val.Type
		row.val.Type = models.TransactionExpired
		row.val.Active = false
		row.val.UpdatedAt = at
		t.state.transactions[id] = row
	}
	return nil
}

func (t *memTx) CouponCodeExists(_ context.Context, code string) (bool, error) {
	for _, row := range t.state.coupons {
		if row.val.Code == code {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) InsertCoupon(_ context.Context, c *models.CouponUser) error {
	for _, row := range t.state.coupons {
		if row.val.Code == c.Code {
			return ErrCouponCodeTaken
		}
	}
	t.state.seq++
	t.state.coupons[c.ID] = memRow[models.CouponUser]{seq: t.state.seq, val: *c}
	return nil
}

func (t *memTx) GetCouponByCode(_ context.Context, code string) (*models.CouponUser, error) {
	for _, row := range t.state.coupons {
		if row.val.Code == code {
			c := row.val
			return &c, nil
		}
	}
	return nil, ErrCouponNotFound
}

func (t *memTx) MarkCouponUsed(_ context.Context, id uuid.UUID, at time.Time) error {
	row, ok := t.state.coupons[id]
	if !ok {
		return ErrCouponNotFound
	}
	if row.val.UsedAt != nil {
		return ErrCouponUsed
	}
	row.val.UsedAt = &at
	t.state.coupons[id] = row
	return nil
}

func (t *memTx) ListCoupons(_ context.Context, userID string) ([]models.CouponUser, error) {
	var rows []memRow[models.CouponUser]
	for _, row := range t.state.coupons {
		if row.val.UserID == userID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq > rows[j].seq })

	out := make([]models.CouponUser, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.val)
	}
	return out, nil
}
