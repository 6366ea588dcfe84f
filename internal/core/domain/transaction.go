package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType classifies a wallet movement.
type TransactionType string

const (
	TransactionTypeWalletAdd TransactionType = "wallet_add"
	TransactionTypePurchase  TransactionType = "purchase"
)

// TransactionStatus is the ledger entry lifecycle. A transaction is
// created pending and transitions exactly once to a terminal status.
type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusSuccess   TransactionStatus = "success"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusCancelled TransactionStatus = "cancelled"
)

// Transaction is an append-only ledger row. Amount is signed: positive
// for wallet additions, negative for purchases. Only rows with status
// success contribute to the cached wallet balance.
type Transaction struct {
	ID             uuid.UUID         `json:"id"`
	UserID         int64             `json:"user_id"`
	Type           TransactionType   `json:"type"`
	Amount         int64             `json:"amount"` // paise, signed
	GatewayOrderID *string           `json:"gateway_order_id,omitempty"`
	PaymentLink    *string           `json:"payment_link,omitempty"`
	Status         TransactionStatus `json:"status"`
	Description    string            `json:"description"`
	CreatedAt      time.Time         `json:"created_at"`
	SettledAt      *time.Time        `json:"settled_at,omitempty"`
}

// IsTerminal reports whether the transaction has settled.
func (t *Transaction) IsTerminal() bool {
	return t.Status == TransactionStatusSuccess ||
		t.Status == TransactionStatusFailed ||
		t.Status == TransactionStatusCancelled
}
