package ports

import (
	"context"
	"time"

	"gmail-marketplace/internal/core/domain"

	"github.com/google/uuid"
)

// --- External collaborators ---

// GatewayOrderRequest is the input to external order creation.
type GatewayOrderRequest struct {
	OrderID    string
	Amount     int64 // paise
	CustomerID int64
	Phone      string
	ExpiresAt  time.Time
}

// GatewayOrder is the payable reference returned by the gateway.
type GatewayOrder struct {
	OrderID     string
	SessionID   string
	PaymentLink string
}

// PaymentGateway bridges the external payment provider. Treated as
// untrusted and unreliable: every call may fail transiently and is
// surfaced as GatewayUnavailable, never silently assumed successful.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req GatewayOrderRequest) (*GatewayOrder, error)
	// FetchStatus is a stateless query; it never mutates ledger state.
	FetchStatus(ctx context.Context, orderID string) (domain.GatewayStatus, error)
}

// Notifier fans admin events out best-effort. Delivery failure must
// never roll back the state change that produced the event.
type Notifier interface {
	BatchSubmitted(ctx context.Context, batch *domain.BatchSummary)
	WithdrawalRequested(ctx context.Context, w *domain.Withdrawal)
}

// --- Infrastructure services ---

// EncryptionService handles AES-256-GCM encryption of credential
// passwords at rest.
type EncryptionService interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// HashService handles admin password hashing (Argon2id).
type HashService interface {
	Hash(password string) (string, error)
	Verify(password string, hash string) (bool, error)
}

// SignatureService verifies gateway webhook signatures (HMAC-SHA256).
type SignatureService interface {
	Sign(secretKey string, payload string) string
	Verify(secretKey string, payload string, signature string) bool
}

// TokenService handles admin session JWTs.
type TokenService interface {
	Generate(adminID uuid.UUID, username string) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	AdminID  uuid.UUID
	Username string
}

// StockCache is a best-effort cache of the available-stock count.
// A miss or error falls through to the database.
type StockCache interface {
	Get(ctx context.Context) (count int, ok bool, err error)
	Set(ctx context.Context, count int) error
	Invalidate(ctx context.Context) error
}

// SessionLock serializes flows per user: a buyer cannot start a second
// purchase or top-up flow while one is open.
type SessionLock interface {
	// Acquire returns false if the user already holds the lock.
	Acquire(ctx context.Context, userID int64, ttl time.Duration) (bool, error)
	Release(ctx context.Context, userID int64) error
}

// HealthChecker checks external dependency health.
type HealthChecker interface {
	// Ping verifies connectivity. Returns nil if healthy.
	Ping(ctx context.Context) error
	// Name returns the dependency name (e.g., "postgresql", "redis").
	Name() string
}

// --- Business services ---

// WalletService is the wallet ledger: balance kept consistent with a
// durable, append-only transaction history.
type WalletService interface {
	// OpenTransaction creates a pending ledger row. Balance is untouched
	// until settlement.
	OpenTransaction(ctx context.Context, userID int64, typ domain.TransactionType, amount int64, description string, orderID, paymentLink *string) (*domain.Transaction, error)
	// Settle performs the one-time terminal transition. On success (and
	// only the first time) the user's balance is adjusted by the
	// transaction amount atomically. Re-settling returns AlreadySettled.
	Settle(ctx context.Context, txID uuid.UUID, outcome domain.TransactionStatus) error
	Balance(ctx context.Context, userID int64) (int64, error)
	History(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error)
}

// ReconcileService is the payment reconciliation engine: it bridges
// external gateway state into the wallet ledger exactly once.
type ReconcileService interface {
	// CreateOrder obtains a payable reference from the gateway and opens
	// the pending ledger transaction. On gateway failure no pending
	// transaction is left behind.
	CreateOrder(ctx context.Context, userID int64, amount int64) (*domain.PaymentOrder, error)
	Status(ctx context.Context, orderID string) (*domain.PaymentOrder, error)
	// Reconcile fetches gateway status and, on a terminal gateway state,
	// settles the ledger transaction. Safe to call repeatedly and
	// concurrently; at most one caller observes a state change.
	// Returns true when the order is now terminal.
	Reconcile(ctx context.Context, orderID string) (bool, error)
	// Cancel settles the order cancelled while still pending. If a
	// concurrent reconcile already settled it, the cancellation is a
	// benign no-op.
	Cancel(ctx context.Context, orderID string) error
}

// PurchaseResult is the outcome of a successful purchase.
type PurchaseResult struct {
	Items     []domain.InventoryItem `json:"items"`
	Creds     []domain.Credential    `json:"credentials"`
	TotalCost int64                  `json:"total_cost"`
	Balance   int64                  `json:"balance"` // balance after debit
}

// CommerceService is the facade composing allocator, wallet and
// earnings into single logical operations.
type CommerceService interface {
	RegisterUser(ctx context.Context, id int64, username, fullName string) (*domain.User, error)
	Stock(ctx context.Context) (int, error)
	// Purchase allocates quantity items FIFO, debits the buyer's wallet
	// and credits seller earnings, all in one atomic scope.
	Purchase(ctx context.Context, buyerID int64, quantity int) (*PurchaseResult, error)
	Purchases(ctx context.Context, buyerID int64) ([]domain.InventoryItem, error)

	RegisterSeller(ctx context.Context, userID int64, upiAddress string) (*domain.Seller, error)
	SubmitBatch(ctx context.Context, userID int64, creds []domain.Credential) (uuid.UUID, error)
	SellerOverview(ctx context.Context, userID int64) (*domain.Seller, *domain.SellerStats, error)
	RequestWithdrawal(ctx context.Context, userID int64) (*domain.Withdrawal, error)
}

// ApprovalService resolves the three admin approval workflows.
// Re-resolving an already-resolved entity is an idempotent no-op.
type ApprovalService interface {
	PendingSellers(ctx context.Context, limit, offset int) ([]domain.PendingSeller, error)
	PendingBatches(ctx context.Context, limit, offset int) ([]domain.BatchSummary, error)
	PendingWithdrawals(ctx context.Context, limit, offset int) ([]domain.PendingWithdrawal, error)
	ResolveSeller(ctx context.Context, adminID uuid.UUID, sellerID uuid.UUID, approve bool) error
	ResolveBatch(ctx context.Context, adminID uuid.UUID, batchID uuid.UUID, approve bool) error
	// ResolveWithdrawal marks the request paid or rejected. Paying
	// decrements the seller's earnings by the request-time snapshot in
	// the same atomic scope.
	ResolveWithdrawal(ctx context.Context, adminID uuid.UUID, withdrawalID uuid.UUID, approve bool) error
	SetUserBanned(ctx context.Context, adminID uuid.UUID, userID int64, banned bool) error
}

// AuthService authenticates operators.
type AuthService interface {
	Login(ctx context.Context, username, password string) (string, time.Time, error) // token, expiry
}

// StatsService exposes admin reporting.
type StatsService interface {
	Overview(ctx context.Context) (*MarketStats, error)
	Revenue(ctx context.Context) ([]RevenueWindow, error)
}
