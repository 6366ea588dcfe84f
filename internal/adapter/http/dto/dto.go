package dto

import (
	"time"

	"gmail-marketplace/internal/core/domain"
	"gmail-marketplace/internal/core/ports"
)

// RegisterUserRequest is the request body for user registration. The
// user identity itself comes from the trusted channel headers.
type RegisterUserRequest struct {
	Username string `json:"username" binding:"required,max=64"`
	FullName string `json:"full_name" binding:"max=128"`
}

// CreateOrderRequest is the request body for opening a top-up order.
type CreateOrderRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

// PurchaseRequest is the request body for buying accounts.
type PurchaseRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

// SellerRegisterRequest is the request body for seller registration.
type SellerRegisterRequest struct {
	UPIAddress string `json:"upi_address" binding:"required,max=128,upi"`
}

// CredentialEntry is one account inside a batch submission.
type CredentialEntry struct {
	Email    string `json:"email" binding:"required,max=128"`
	Password string `json:"password" binding:"required,max=128"`
}

// SubmitBatchRequest is the request body for submitting a credential batch.
type SubmitBatchRequest struct {
	Accounts []CredentialEntry `json:"accounts" binding:"required,min=1,dive"`
}

// AdminLoginRequest is the request body for operator login. The
// password is verified against its hash verbatim, so it is exempt
// from input sanitization.
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// ResolveRequest is the request body for approve/reject decisions.
type ResolveRequest struct {
	Approve *bool `json:"approve" binding:"required"`
}

// BanRequest is the request body for the user ban toggle.
type BanRequest struct {
	Banned *bool `json:"banned" binding:"required"`
}

// WebhookPayload is the gateway push notification body.
type WebhookPayload struct {
	Type string `json:"type"`
	Data struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
		Payment struct {
			PaymentStatus string `json:"payment_status"`
		} `json:"payment"`
	} `json:"data"`
}

// OrderResponse is the reconciliation view of a top-up order.
type OrderResponse struct {
	OrderID     string `json:"order_id"`
	Amount      int64  `json:"amount"`
	PaymentLink string `json:"payment_link,omitempty"`
	Status      string `json:"status"`
	ExpiresAt   string `json:"expires_at"`
	CreatedAt   string `json:"created_at"`
}

// OrderResponseFrom maps a domain payment order.
func OrderResponseFrom(o *domain.PaymentOrder) OrderResponse {
	return OrderResponse{
		OrderID:     o.OrderID,
		Amount:      o.Amount,
		PaymentLink: o.PaymentLink,
		Status:      string(o.Status),
		ExpiresAt:   o.ExpiresAt.Format(time.RFC3339),
		CreatedAt:   o.CreatedAt.Format(time.RFC3339),
	}
}

// BalanceResponse is the wallet balance view.
type BalanceResponse struct {
	Balance int64 `json:"balance"` // paise
}

// TransactionResponse is one ledger row.
type TransactionResponse struct {
	ID          string  `json:"id"`
	Type        string  `json:"type"`
	Amount      int64   `json:"amount"`
	Status      string  `json:"status"`
	Description string  `json:"description,omitempty"`
	CreatedAt   string  `json:"created_at"`
	SettledAt   *string `json:"settled_at,omitempty"`
}

// TransactionResponseFrom maps a domain transaction.
func TransactionResponseFrom(t *domain.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:          t.ID.String(),
		Type:        string(t.Type),
		Amount:      t.Amount,
		Status:      string(t.Status),
		Description: t.Description,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
	if t.SettledAt != nil {
		s := t.SettledAt.Format(time.RFC3339)
		resp.SettledAt = &s
	}
	return resp
}

// StockResponse is the available-stock count.
type StockResponse struct {
	Available int `json:"available"`
}

// PurchasedAccount is one delivered credential.
type PurchasedAccount struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// PurchaseResponse is the outcome of a successful purchase.
type PurchaseResponse struct {
	Accounts  []PurchasedAccount `json:"accounts"`
	TotalCost int64              `json:"total_cost"`
	Balance   int64              `json:"balance"`
}

// PurchaseResponseFrom maps a purchase result.
func PurchaseResponseFrom(r *ports.PurchaseResult) PurchaseResponse {
	accounts := make([]PurchasedAccount, 0, len(r.Creds))
	for _, c := range r.Creds {
		accounts = append(accounts, PurchasedAccount{Email: c.Email, Password: c.Password})
	}
	return PurchaseResponse{
		Accounts:  accounts,
		TotalCost: r.TotalCost,
		Balance:   r.Balance,
	}
}

// PurchaseHistoryItem is one previously bought account. Passwords are
// not repeated here; they are delivered once at purchase time.
type PurchaseHistoryItem struct {
	Email  string `json:"email"`
	SoldAt string `json:"sold_at,omitempty"`
}

// PurchaseHistoryFrom maps sold inventory rows.
func PurchaseHistoryFrom(items []domain.InventoryItem) []PurchaseHistoryItem {
	out := make([]PurchaseHistoryItem, 0, len(items))
	for _, it := range items {
		entry := PurchaseHistoryItem{Email: it.Email}
		if it.SoldAt != nil {
			entry.SoldAt = it.SoldAt.Format(time.RFC3339)
		}
		out = append(out, entry)
	}
	return out
}

// SellerResponse is the seller profile view.
type SellerResponse struct {
	SellerID      string `json:"seller_id"`
	Status        string `json:"status"`
	UPIAddress    string `json:"upi_address"`
	TotalEarnings int64  `json:"total_earnings"`
}

// SellerResponseFrom maps a domain seller.
func SellerResponseFrom(s *domain.Seller) SellerResponse {
	return SellerResponse{
		SellerID:      s.ID.String(),
		Status:        string(s.Status),
		UPIAddress:    s.UPIAddress,
		TotalEarnings: s.TotalEarnings,
	}
}

// SellerOverviewResponse is the seller profile with inventory stats.
type SellerOverviewResponse struct {
	Seller    SellerResponse `json:"seller"`
	Pending   int            `json:"pending"`
	Available int            `json:"available"`
	Sold      int            `json:"sold"`
}

// BatchResponse acknowledges a submitted batch.
type BatchResponse struct {
	BatchID string `json:"batch_id"`
	Count   int    `json:"count"`
}

// WithdrawalResponse is a payout request view.
type WithdrawalResponse struct {
	WithdrawalID string `json:"withdrawal_id"`
	Amount       int64  `json:"amount"`
	UPIAddress   string `json:"upi_address"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}

// WithdrawalResponseFrom maps a domain withdrawal.
func WithdrawalResponseFrom(w *domain.Withdrawal) WithdrawalResponse {
	return WithdrawalResponse{
		WithdrawalID: w.ID.String(),
		Amount:       w.Amount,
		UPIAddress:   w.UPIAddress,
		Status:       string(w.Status),
		CreatedAt:    w.CreatedAt.Format(time.RFC3339),
	}
}

// LoginResponse is the response body for successful operator login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}
