package ports

import (
	"context"
	"time"

	"gmail-marketplace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// UserRepository defines persistence operations for users.
// Methods accepting pgx.Tx run inside transaction blocks so that
// balance checks and balance writes share one isolation boundary.
type UserRepository interface {
	// Upsert creates the user on first contact or refreshes identity fields.
	Upsert(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	// GetByIDForUpdate locks the user row for the duration of the transaction.
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.User, error)
	// ApplyBalance adjusts the cached wallet balance by delta (signed).
	ApplyBalance(ctx context.Context, tx pgx.Tx, userID int64, delta int64) error
	// SetRole promotes or demotes a user. Takes a transaction so the
	// role change commits atomically with the decision that caused it.
	SetRole(ctx context.Context, tx pgx.Tx, userID int64, role domain.Role) error
	SetBanned(ctx context.Context, userID int64, banned bool) error
}

// SellerRepository defines persistence operations for seller profiles.
type SellerRepository interface {
	Create(ctx context.Context, seller *domain.Seller) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Seller, error)
	GetByUserID(ctx context.Context, userID int64) (*domain.Seller, error)
	// ListPending returns pending registrations oldest-first.
	ListPending(ctx context.Context, limit, offset int) ([]domain.PendingSeller, error)
	// Resolve flips a pending seller to approved/rejected recording the
	// acting admin. Returns false when no pending row matched (already
	// resolved — an idempotent no-op, not an error).
	Resolve(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, approve bool, adminID uuid.UUID, at time.Time) (bool, error)
	// CreditEarnings accrues payout for a sold item.
	CreditEarnings(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, amount int64) error
	// DebitEarnings decrements accrued earnings on payout. Returns false
	// if the seller's earnings are below amount (guarded update).
	DebitEarnings(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, amount int64) (bool, error)
}

// InventoryRepository defines persistence operations for inventory items.
type InventoryRepository interface {
	// InsertBatch inserts pending items sharing one batch ID.
	InsertBatch(ctx context.Context, items []domain.InventoryItem) error
	// ResolveBatch transitions every pending item of the batch to
	// available (approve) or rejected, returning the number of rows
	// moved. Zero means the batch was already resolved or unknown.
	ResolveBatch(ctx context.Context, tx pgx.Tx, batchID uuid.UUID, approve bool, at time.Time) (int64, error)
	CountAvailable(ctx context.Context) (int, error)
	// SelectAvailableForUpdate locks and returns up to limit available
	// items, oldest first by insertion sequence. Must run inside the
	// same transaction as the subsequent MarkSold.
	SelectAvailableForUpdate(ctx context.Context, tx pgx.Tx, limit int) ([]domain.InventoryItem, error)
	// MarkSold claims the given items for the buyer.
	MarkSold(ctx context.Context, tx pgx.Tx, itemIDs []uuid.UUID, buyerID int64, at time.Time) error
	// MarkPaidOut flags the seller's sold, not-yet-paid items as paid
	// out, returning the number of rows flagged. Runs inside the
	// withdrawal approval transaction.
	MarkPaidOut(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) (int64, error)
	// ListPendingBatches returns pending batch summaries oldest-first.
	ListPendingBatches(ctx context.Context, limit, offset int) ([]domain.BatchSummary, error)
	ListByBuyer(ctx context.Context, buyerID int64, limit int) ([]domain.InventoryItem, error)
	SellerStats(ctx context.Context, sellerID uuid.UUID) (*domain.SellerStats, error)
}

// TransactionRepository defines persistence operations for ledger rows.
// Rows are append-only: status moves exactly once from pending to a
// terminal value and nothing else is ever mutated.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	GetByOrderID(ctx context.Context, orderID string) (*domain.Transaction, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Transaction, error)
	// SettleStatus performs the guarded pending -> terminal transition.
	// Returns false when the row was not pending (the AlreadySettled guard).
	SettleStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.TransactionStatus, at time.Time) (bool, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error)
	// SumSettledByUser recomputes the balance from the ledger. Used by
	// integrity checks and tests, never on the hot path.
	SumSettledByUser(ctx context.Context, userID int64) (int64, error)
}

// WithdrawalRepository defines persistence operations for payout requests.
type WithdrawalRepository interface {
	Create(ctx context.Context, w *domain.Withdrawal) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error)
	ExistsPending(ctx context.Context, sellerID uuid.UUID) (bool, error)
	// ListPendingWithSales returns pending withdrawals oldest-first,
	// restricted to sellers with at least one sold item.
	ListPendingWithSales(ctx context.Context, limit, offset int) ([]domain.PendingWithdrawal, error)
	// Resolve flips a pending withdrawal to paid/rejected recording the
	// acting admin. Returns false when no pending row matched.
	Resolve(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.WithdrawalStatus, adminID uuid.UUID, at time.Time) (bool, error)
}

// AdminRepository defines persistence operations for operator accounts.
type AdminRepository interface {
	Create(ctx context.Context, admin *domain.AdminAccount) error
	GetByUsername(ctx context.Context, username string) (*domain.AdminAccount, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminAccount, error)
}

// AuditRepository persists admin action records.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditLog) error
	ListRecent(ctx context.Context, limit int) ([]domain.AuditLog, error)
}

// MarketStats aggregates marketplace totals for the admin overview.
type MarketStats struct {
	TotalUsers         int64 `json:"total_users"`
	AvailableItems     int64 `json:"available_items"`
	SoldItems          int64 `json:"sold_items"`
	PendingSellers     int64 `json:"pending_sellers"`
	PendingBatches     int64 `json:"pending_batches"`
	PendingWithdrawals int64 `json:"pending_withdrawals"`
	TotalRevenue       int64 `json:"total_revenue"`   // sum of settled wallet_add amounts
	AccruedPayouts     int64 `json:"accrued_payouts"` // sum of seller earnings not yet paid out
}

// RevenueWindow is revenue aggregated over a trailing period.
type RevenueWindow struct {
	Period string `json:"period"` // daily, weekly, monthly, yearly
	Amount int64  `json:"amount"`
	Count  int64  `json:"count"`
}

// StatsRepository computes admin reporting aggregates.
type StatsRepository interface {
	Overview(ctx context.Context) (*MarketStats, error)
	RevenueSince(ctx context.Context, since time.Time) (*RevenueWindow, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
