package domain

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus is the generic three-state admin approval machine,
// shared by sellers, inventory batches and withdrawal requests.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// Seller is a user's selling profile, created on first sell attempt.
// TotalEarnings accrues per sold item and decreases only when a
// withdrawal is paid out.
type Seller struct {
	ID            uuid.UUID      `json:"id"`
	UserID        int64          `json:"user_id"`
	Status        ApprovalStatus `json:"status"`
	UPIAddress    string         `json:"upi_address"`
	TotalEarnings int64          `json:"total_earnings"` // paise
	ApprovedBy    *uuid.UUID     `json:"approved_by,omitempty"`
	ApprovedAt    *time.Time     `json:"approved_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

// IsApproved reports whether the seller may submit inventory.
func (s *Seller) IsApproved() bool {
	return s.Status == ApprovalApproved
}

// PendingSeller is a pending registration joined with user identity,
// for the admin review queue.
type PendingSeller struct {
	Seller
	Username string `json:"username"`
	FullName string `json:"full_name"`
}

// SellerStats summarises a seller's inventory by lifecycle state.
type SellerStats struct {
	Pending   int `json:"pending"`
	Available int `json:"available"`
	Sold      int `json:"sold"`
}
