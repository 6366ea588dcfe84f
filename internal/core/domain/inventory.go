package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ItemStatus is the inventory item lifecycle state.
//
// Legal transitions:
//
//	pending  -> available | rejected   (admin batch resolution)
//	available -> sold                  (purchase allocation only)
//
// rejected and sold are terminal. pending -> sold is forbidden.
type ItemStatus string

const (
	ItemPending   ItemStatus = "pending"
	ItemAvailable ItemStatus = "available"
	ItemRejected  ItemStatus = "rejected"
	ItemSold      ItemStatus = "sold"
)

// InventoryItem is a single sellable credential pair. Seq is an
// immutable insertion sequence used as the FIFO tie-break during
// allocation. PasswordEnc holds the AES-GCM-encrypted password; the
// plaintext exists only in transit to the buyer.
type InventoryItem struct {
	ID          uuid.UUID  `json:"id"`
	Seq         int64      `json:"-"`
	SellerID    uuid.UUID  `json:"seller_id"`
	Email       string     `json:"email"`
	PasswordEnc string     `json:"-"`
	BatchID     uuid.UUID  `json:"batch_id"`
	Status      ItemStatus `json:"status"`
	BuyerID     *int64     `json:"buyer_id,omitempty"`
	PaidOut     bool       `json:"paid_out"`
	CreatedAt   time.Time  `json:"created_at"`
	ApprovedAt  *time.Time `json:"approved_at,omitempty"`
	SoldAt      *time.Time `json:"sold_at,omitempty"`
}

// CheckIntegrity verifies the buyer-reference invariant: an item has a
// buyer if and only if it is sold. A violation is a fatal data breach
// that must halt the operation that observed it.
func (i *InventoryItem) CheckIntegrity() error {
	if i.Status == ItemSold && i.BuyerID == nil {
		return fmt.Errorf("item %s sold without buyer reference", i.ID)
	}
	if i.Status != ItemSold && i.BuyerID != nil {
		return fmt.Errorf("item %s has buyer reference in status %s", i.ID, i.Status)
	}
	return nil
}

// Credential is the plaintext pair handed to a buyer after purchase.
type Credential struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// BatchSummary describes one pending batch in the admin review queue.
// A batch is not a durable row; it is the group of items sharing a
// batch ID, resolved as a unit.
type BatchSummary struct {
	BatchID      uuid.UUID `json:"batch_id"`
	SellerID     uuid.UUID `json:"seller_id"`
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	Count        int       `json:"count"`
	SampleEmails []string  `json:"sample_emails"`
	SubmittedAt  time.Time `json:"submitted_at"`
}
