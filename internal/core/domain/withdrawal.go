package domain

import (
	"time"

	"github.com/google/uuid"
)

// WithdrawalStatus is the payout request lifecycle.
type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalPaid     WithdrawalStatus = "paid"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

// Withdrawal is a seller's request to convert accrued earnings into an
// off-platform UPI payment. Amount is the earnings snapshot taken at
// request time; later sales never inflate an already-approved payout.
// Resolved exactly once by an admin; the row doubles as the payout record.
type Withdrawal struct {
	ID          uuid.UUID        `json:"id"`
	SellerID    uuid.UUID        `json:"seller_id"`
	UserID      int64            `json:"user_id"`
	Amount      int64            `json:"amount"` // paise
	UPIAddress  string           `json:"upi_address"`
	Status      WithdrawalStatus `json:"status"`
	ProcessedBy *uuid.UUID       `json:"processed_by,omitempty"`
	ProcessedAt *time.Time       `json:"processed_at,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
}

// PendingWithdrawal joins a pending request with seller identity and
// sales evidence for the admin queue. Only sellers with at least one
// sold item are eligible for payout.
type PendingWithdrawal struct {
	Withdrawal
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	TotalEarnings int64  `json:"total_earnings"`
	SoldCount     int    `json:"sold_count"`
}
