package integration

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gmail-marketplace/internal/core/domain"
	"gmail-marketplace/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// memStore is the shared in-memory database backing every repo. A
// single transaction mutex serializes Begin..Commit scopes, emulating
// the row-level locking the real PostgreSQL adapter relies on.
type memStore struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	users       map[int64]*domain.User
	sellers     map[uuid.UUID]*domain.Seller
	items       []*domain.InventoryItem
	txns        map[uuid.UUID]*domain.Transaction
	withdrawals map[uuid.UUID]*domain.Withdrawal
	admins      map[uuid.UUID]*domain.AdminAccount
	audits      []*domain.AuditLog
	seq         int64
}

func newMemStore() *memStore {
	return &memStore{
		users:       make(map[int64]*domain.User),
		sellers:     make(map[uuid.UUID]*domain.Seller),
		txns:        make(map[uuid.UUID]*domain.Transaction),
		withdrawals: make(map[uuid.UUID]*domain.Withdrawal),
		admins:      make(map[uuid.UUID]*domain.AdminAccount),
	}
}

// --- Locking transactor ---

type lockingTransactor struct {
	store *memStore
}

func newLockingTransactor(store *memStore) *lockingTransactor {
	return &lockingTransactor{store: store}
}

func (t *lockingTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.store.txMu.Lock()
	return &memTx{mu: &t.store.txMu}, nil
}

// memTx holds the store-wide transaction lock until the first Commit
// or Rollback. Repos ignore the tx handle; serialization is the point.
type memTx struct {
	mu   *sync.Mutex
	once sync.Once
}

func (t *memTx) release() {
	t.once.Do(t.mu.Unlock)
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) Commit(ctx context.Context) error          { t.release(); return nil }
func (t *memTx) Rollback(ctx context.Context) error        { t.release(); return nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *memTx) Conn() *pgx.Conn                                               { return nil }

// --- User repo ---

type inMemoryUserRepo struct{ store *memStore }

func (r *inMemoryUserRepo) Upsert(ctx context.Context, user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.users[user.ID]; ok {
		existing.Username = user.Username
		existing.FullName = user.FullName
		return nil
	}
	cp := *user
	r.store.users[user.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryUserRepo) ApplyBalance(ctx context.Context, tx pgx.Tx, userID int64, delta int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	u.WalletBalance += delta
	return nil
}

func (r *inMemoryUserRepo) SetRole(ctx context.Context, tx pgx.Tx, userID int64, role domain.Role) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	u.Role = role
	return nil
}

func (r *inMemoryUserRepo) SetBanned(ctx context.Context, userID int64, banned bool) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[userID]
	if !ok {
		return fmt.Errorf("user %d not found", userID)
	}
	u.IsBanned = banned
	return nil
}

// --- Seller repo ---

type inMemorySellerRepo struct{ store *memStore }

func (r *inMemorySellerRepo) Create(ctx context.Context, seller *domain.Seller) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, s := range r.store.sellers {
		if s.UserID == seller.UserID {
			return fmt.Errorf("seller already exists for user %d", seller.UserID)
		}
	}
	cp := *seller
	r.store.sellers[seller.ID] = &cp
	return nil
}

func (r *inMemorySellerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Seller, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	s, ok := r.store.sellers[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *inMemorySellerRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Seller, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, s := range r.store.sellers {
		if s.UserID == userID {
			cp := *s
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemorySellerRepo) ListPending(ctx context.Context, limit, offset int) ([]domain.PendingSeller, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var pending []domain.PendingSeller
	for _, s := range r.store.sellers {
		if s.Status != domain.ApprovalPending {
			continue
		}
		ps := domain.PendingSeller{Seller: *s}
		if u, ok := r.store.users[s.UserID]; ok {
			ps.Username = u.Username
			ps.FullName = u.FullName
		}
		pending = append(pending, ps)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return page(pending, limit, offset), nil
}

func (r *inMemorySellerRepo) Resolve(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, approve bool, adminID uuid.UUID, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sellers[sellerID]
	if !ok || s.Status != domain.ApprovalPending {
		return false, nil
	}
	if approve {
		s.Status = domain.ApprovalApproved
	} else {
		s.Status = domain.ApprovalRejected
	}
	s.ApprovedBy = &adminID
	s.ApprovedAt = &at
	return true, nil
}

func (r *inMemorySellerRepo) CreditEarnings(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, amount int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sellers[sellerID]
	if !ok {
		return fmt.Errorf("seller %s not found", sellerID)
	}
	s.TotalEarnings += amount
	return nil
}

func (r *inMemorySellerRepo) DebitEarnings(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, amount int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.sellers[sellerID]
	if !ok || s.TotalEarnings < amount {
		return false, nil
	}
	s.TotalEarnings -= amount
	return true, nil
}

// --- Inventory repo ---

type inMemoryInventoryRepo struct{ store *memStore }

// InsertBatch is all-or-nothing: a duplicate anywhere in the batch
// inserts nothing, matching the transactional postgres implementation.
func (r *inMemoryInventoryRepo) InsertBatch(ctx context.Context, items []domain.InventoryItem) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for i := range items {
		for _, existing := range r.store.items {
			if existing.Status != domain.ItemRejected && existing.Status != domain.ItemSold &&
				strings.EqualFold(existing.Email, items[i].Email) {
				return fmt.Errorf("duplicate email %s", items[i].Email)
			}
		}
	}
	for i := range items {
		r.store.seq++
		cp := items[i]
		cp.Seq = r.store.seq
		r.store.items = append(r.store.items, &cp)
	}
	return nil
}

func (r *inMemoryInventoryRepo) ResolveBatch(ctx context.Context, tx pgx.Tx, batchID uuid.UUID, approve bool, at time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var moved int64
	for _, item := range r.store.items {
		if item.BatchID != batchID || item.Status != domain.ItemPending {
			continue
		}
		if approve {
			item.Status = domain.ItemAvailable
			item.ApprovedAt = &at
		} else {
			item.Status = domain.ItemRejected
		}
		moved++
	}
	return moved, nil
}

func (r *inMemoryInventoryRepo) CountAvailable(ctx context.Context) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	count := 0
	for _, item := range r.store.items {
		if item.Status == domain.ItemAvailable {
			count++
		}
	}
	return count, nil
}

func (r *inMemoryInventoryRepo) SelectAvailableForUpdate(ctx context.Context, tx pgx.Tx, limit int) ([]domain.InventoryItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var available []*domain.InventoryItem
	for _, item := range r.store.items {
		if item.Status == domain.ItemAvailable {
			available = append(available, item)
		}
	}
	sort.Slice(available, func(i, j int) bool { return available[i].Seq < available[j].Seq })
	if len(available) > limit {
		available = available[:limit]
	}
	out := make([]domain.InventoryItem, 0, len(available))
	for _, item := range available {
		out = append(out, *item)
	}
	return out, nil
}

func (r *inMemoryInventoryRepo) MarkSold(ctx context.Context, tx pgx.Tx, itemIDs []uuid.UUID, buyerID int64, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ids := make(map[uuid.UUID]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		ids[id] = struct{}{}
	}
	for _, item := range r.store.items {
		if _, ok := ids[item.ID]; !ok {
			continue
		}
		if item.Status != domain.ItemAvailable {
			return fmt.Errorf("item %s not available", item.ID)
		}
		b := buyerID
		t := at
		item.Status = domain.ItemSold
		item.BuyerID = &b
		item.SoldAt = &t
	}
	return nil
}

func (r *inMemoryInventoryRepo) MarkPaidOut(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var flagged int64
	for _, item := range r.store.items {
		if item.SellerID == sellerID && item.Status == domain.ItemSold && !item.PaidOut {
			item.PaidOut = true
			flagged++
		}
	}
	return flagged, nil
}

func (r *inMemoryInventoryRepo) ListPendingBatches(ctx context.Context, limit, offset int) ([]domain.BatchSummary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	byBatch := make(map[uuid.UUID]*domain.BatchSummary)
	var order []uuid.UUID
	for _, item := range r.store.items {
		if item.Status != domain.ItemPending {
			continue
		}
		summary, ok := byBatch[item.BatchID]
		if !ok {
			summary = &domain.BatchSummary{
				BatchID:     item.BatchID,
				SellerID:    item.SellerID,
				SubmittedAt: item.CreatedAt,
			}
			if s, ok := r.store.sellers[item.SellerID]; ok {
				summary.UserID = s.UserID
				if u, ok := r.store.users[s.UserID]; ok {
					summary.Username = u.Username
				}
			}
			byBatch[item.BatchID] = summary
			order = append(order, item.BatchID)
		}
		summary.Count++
		if len(summary.SampleEmails) < 3 {
			summary.SampleEmails = append(summary.SampleEmails, item.Email)
		}
	}
	summaries := make([]domain.BatchSummary, 0, len(order))
	for _, id := range order {
		summaries = append(summaries, *byBatch[id])
	}
	return page(summaries, limit, offset), nil
}

func (r *inMemoryInventoryRepo) ListByBuyer(ctx context.Context, buyerID int64, limit int) ([]domain.InventoryItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []domain.InventoryItem
	for _, item := range r.store.items {
		if item.BuyerID != nil && *item.BuyerID == buyerID {
			out = append(out, *item)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SoldAt != nil && out[j].SoldAt != nil && out[i].SoldAt.After(*out[j].SoldAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *inMemoryInventoryRepo) SellerStats(ctx context.Context, sellerID uuid.UUID) (*domain.SellerStats, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	stats := &domain.SellerStats{}
	for _, item := range r.store.items {
		if item.SellerID != sellerID {
			continue
		}
		switch item.Status {
		case domain.ItemPending:
			stats.Pending++
		case domain.ItemAvailable:
			stats.Available++
		case domain.ItemSold:
			stats.Sold++
		}
	}
	return stats, nil
}

// --- Transaction repo ---

type inMemoryTransactionRepo struct{ store *memStore }

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *t
	r.store.txns[t.ID] = &cp
	return nil
}

func (r *inMemoryTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	t, ok := r.store.txns[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (r *inMemoryTransactionRepo) GetByOrderID(ctx context.Context, orderID string) (*domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, t := range r.store.txns {
		if t.GatewayOrderID != nil && *t.GatewayOrderID == orderID {
			cp := *t
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryTransactionRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryTransactionRepo) SettleStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.txns[id]
	if !ok || t.Status != domain.TransactionStatusPending {
		return false, nil
	}
	t.Status = status
	t.SettledAt = &at
	return true, nil
}

func (r *inMemoryTransactionRepo) ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var out []domain.Transaction
	for _, t := range r.store.txns {
		if t.UserID == userID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *inMemoryTransactionRepo) SumSettledByUser(ctx context.Context, userID int64) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var sum int64
	for _, t := range r.store.txns {
		if t.UserID == userID && t.Status == domain.TransactionStatusSuccess {
			sum += t.Amount
		}
	}
	return sum, nil
}

// --- Withdrawal repo ---

type inMemoryWithdrawalRepo struct{ store *memStore }

func (r *inMemoryWithdrawalRepo) Create(ctx context.Context, w *domain.Withdrawal) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *w
	r.store.withdrawals[w.ID] = &cp
	return nil
}

func (r *inMemoryWithdrawalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	w, ok := r.store.withdrawals[id]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWithdrawalRepo) ExistsPending(ctx context.Context, sellerID uuid.UUID) (bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, w := range r.store.withdrawals {
		if w.SellerID == sellerID && w.Status == domain.WithdrawalPending {
			return true, nil
		}
	}
	return false, nil
}

func (r *inMemoryWithdrawalRepo) ListPendingWithSales(ctx context.Context, limit, offset int) ([]domain.PendingWithdrawal, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	var pending []domain.PendingWithdrawal
	for _, w := range r.store.withdrawals {
		if w.Status != domain.WithdrawalPending {
			continue
		}
		sold := 0
		for _, item := range r.store.items {
			if item.SellerID == w.SellerID && item.Status == domain.ItemSold {
				sold++
			}
		}
		if sold == 0 {
			continue
		}
		pw := domain.PendingWithdrawal{Withdrawal: *w, SoldCount: sold}
		if s, ok := r.store.sellers[w.SellerID]; ok {
			pw.TotalEarnings = s.TotalEarnings
			if u, ok := r.store.users[s.UserID]; ok {
				pw.Username = u.Username
				pw.FullName = u.FullName
			}
		}
		pending = append(pending, pw)
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].CreatedAt.Before(pending[j].CreatedAt) })
	return page(pending, limit, offset), nil
}

func (r *inMemoryWithdrawalRepo) Resolve(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.WithdrawalStatus, adminID uuid.UUID, at time.Time) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	w, ok := r.store.withdrawals[id]
	if !ok || w.Status != domain.WithdrawalPending {
		return false, nil
	}
	w.Status = status
	w.ProcessedBy = &adminID
	w.ProcessedAt = &at
	return true, nil
}

// --- Admin repo ---

type inMemoryAdminRepo struct{ store *memStore }

func (r *inMemoryAdminRepo) Create(ctx context.Context, admin *domain.AdminAccount) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *admin
	r.store.admins[admin.ID] = &cp
	return nil
}

func (r *inMemoryAdminRepo) GetByUsername(ctx context.Context, username string) (*domain.AdminAccount, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	for _, a := range r.store.admins {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryAdminRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminAccount, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	a, ok := r.store.admins[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

// --- Audit repo ---

type inMemoryAuditRepo struct{ store *memStore }

func (r *inMemoryAuditRepo) Insert(ctx context.Context, entry *domain.AuditLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	cp := *entry
	r.store.audits = append(r.store.audits, &cp)
	return nil
}

func (r *inMemoryAuditRepo) ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := make([]domain.AuditLog, 0, len(r.store.audits))
	for i := len(r.store.audits) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *r.store.audits[i])
	}
	return out, nil
}

// --- Stats repo ---

type inMemoryStatsRepo struct{ store *memStore }

func (r *inMemoryStatsRepo) Overview(ctx context.Context) (*ports.MarketStats, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	stats := &ports.MarketStats{TotalUsers: int64(len(r.store.users))}
	pendingBatches := make(map[uuid.UUID]struct{})
	for _, item := range r.store.items {
		switch item.Status {
		case domain.ItemAvailable:
			stats.AvailableItems++
		case domain.ItemSold:
			stats.SoldItems++
		case domain.ItemPending:
			pendingBatches[item.BatchID] = struct{}{}
		}
	}
	stats.PendingBatches = int64(len(pendingBatches))
	for _, s := range r.store.sellers {
		if s.Status == domain.ApprovalPending {
			stats.PendingSellers++
		}
		stats.AccruedPayouts += s.TotalEarnings
	}
	for _, w := range r.store.withdrawals {
		if w.Status == domain.WithdrawalPending {
			stats.PendingWithdrawals++
		}
	}
	for _, t := range r.store.txns {
		if t.Type == domain.TransactionTypeWalletAdd && t.Status == domain.TransactionStatusSuccess {
			stats.TotalRevenue += t.Amount
		}
	}
	return stats, nil
}

func (r *inMemoryStatsRepo) RevenueSince(ctx context.Context, since time.Time) (*ports.RevenueWindow, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	window := &ports.RevenueWindow{}
	for _, t := range r.store.txns {
		if t.Type == domain.TransactionTypeWalletAdd && t.Status == domain.TransactionStatusSuccess && !t.CreatedAt.Before(since) {
			window.Amount += t.Amount
			window.Count++
		}
	}
	return window, nil
}

// page applies limit/offset to a sorted slice.
func page[T any](in []T, limit, offset int) []T {
	if offset >= len(in) {
		return []T{}
	}
	in = in[offset:]
	if limit > 0 && len(in) > limit {
		in = in[:limit]
	}
	return in
}

// --- Fake payment gateway ---

// fakeGateway answers gateway calls from a mutable status map so tests
// can script payment outcomes.
type fakeGateway struct {
	mu     sync.Mutex
	status map[string]domain.GatewayStatus
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{status: make(map[string]domain.GatewayStatus)}
}

func (g *fakeGateway) setStatus(orderID string, status domain.GatewayStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status[orderID] = status
}

func (g *fakeGateway) CreateOrder(ctx context.Context, req ports.GatewayOrderRequest) (*ports.GatewayOrder, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.status[req.OrderID] = domain.GatewayPending
	return &ports.GatewayOrder{
		OrderID:     req.OrderID,
		SessionID:   "session_" + req.OrderID,
		PaymentLink: "https://payments.test/session/" + req.OrderID,
	}, nil
}

func (g *fakeGateway) FetchStatus(ctx context.Context, orderID string) (domain.GatewayStatus, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	status, ok := g.status[orderID]
	if !ok {
		return domain.GatewayPending, nil
	}
	return status, nil
}
