package domain

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus is the reconciliation state machine per payment order.
// CONFIRMED, GATEWAY_FAILED, TIMED_OUT and CANCELLED are terminal.
type OrderStatus string

const (
	OrderCreated         OrderStatus = "CREATED"
	OrderAwaitingGateway OrderStatus = "AWAITING_GATEWAY"
	OrderConfirmed       OrderStatus = "CONFIRMED"
	OrderGatewayFailed   OrderStatus = "GATEWAY_FAILED"
	OrderTimedOut        OrderStatus = "TIMED_OUT"
	OrderCancelled       OrderStatus = "CANCELLED"
)

// GatewayStatus is the status vocabulary of the external gateway.
type GatewayStatus string

const (
	GatewaySuccess GatewayStatus = "SUCCESS"
	GatewayFailed  GatewayStatus = "FAILED"
	GatewayPending GatewayStatus = "PENDING"
)

// PaymentOrder is the reconciliation view of a wallet top-up: the
// ledger transaction bridged with external gateway state. The ledger
// transaction is the durable truth; order status derives from it plus
// the validity window.
type PaymentOrder struct {
	OrderID       string      `json:"order_id"`
	TransactionID uuid.UUID   `json:"transaction_id"`
	UserID        int64       `json:"user_id"`
	Amount        int64       `json:"amount"` // paise
	PaymentLink   string      `json:"payment_link"`
	Status        OrderStatus `json:"status"`
	ExpiresAt     time.Time   `json:"expires_at"`
	CreatedAt     time.Time   `json:"created_at"`
}

// OrderStatusFrom derives the order state from the underlying ledger
// transaction and the expiry clock.
func OrderStatusFrom(txStatus TransactionStatus, expiresAt, now time.Time) OrderStatus {
	switch txStatus {
	case TransactionStatusSuccess:
		return OrderConfirmed
	case TransactionStatusFailed:
		return OrderGatewayFailed
	case TransactionStatusCancelled:
		if now.After(expiresAt) {
			return OrderTimedOut
		}
		return OrderCancelled
	default:
		return OrderAwaitingGateway
	}
}

// NewOrderID generates a gateway order reference.
func NewOrderID() string {
	return "ORDER_" + uuid.New().String()[:18]
}
