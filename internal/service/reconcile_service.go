package service

import (
	"context"
	"fmt"
	"time"

	"gmail-marketplace/config"
	"gmail-marketplace/internal/core/domain"
	"gmail-marketplace/internal/core/ports"
	"gmail-marketplace/pkg/apperror"

	"github.com/rs/zerolog"
)

// ReconcileServiceImpl implements ports.ReconcileService. It bridges
// gateway payment state into the wallet ledger: the ledger transaction
// is the durable truth, the gateway is polled, and the guarded
// settlement in WalletService guarantees the credit lands exactly once
// no matter how many pollers, webhooks and cancellations race.
type ReconcileServiceImpl struct {
	walletSvc ports.WalletService
	txRepo    ports.TransactionRepository
	gateway   ports.PaymentGateway
	market    config.MarketConfig
	log       zerolog.Logger
}

// NewReconcileService creates a new ReconcileServiceImpl.
func NewReconcileService(
	walletSvc ports.WalletService,
	txRepo ports.TransactionRepository,
	gateway ports.PaymentGateway,
	market config.MarketConfig,
	log zerolog.Logger,
) *ReconcileServiceImpl {
	return &ReconcileServiceImpl{
		walletSvc: walletSvc,
		txRepo:    txRepo,
		gateway:   gateway,
		market:    market,
		log:       log,
	}
}

// CreateOrder obtains a payable reference from the gateway and opens
// the pending ledger transaction. The gateway call happens first so a
// gateway failure leaves no pending transaction behind.
func (s *ReconcileServiceImpl) CreateOrder(ctx context.Context, userID int64, amount int64) (*domain.PaymentOrder, error) {
	if amount < s.market.MinWalletAdd || amount > s.market.MaxWalletAdd {
		return nil, apperror.ErrAmountOutOfRange(s.market.MinWalletAdd, s.market.MaxWalletAdd)
	}

	orderID := domain.NewOrderID()
	now := time.Now().UTC()
	expiresAt := now.Add(s.market.PaymentTimeout)

	order, err := s.gateway.CreateOrder(ctx, ports.GatewayOrderRequest{
		OrderID:    orderID,
		Amount:     amount,
		CustomerID: userID,
		ExpiresAt:  expiresAt,
	})
	if err != nil {
		return nil, err
	}

	txn, err := s.walletSvc.OpenTransaction(ctx, userID, domain.TransactionTypeWalletAdd,
		amount, "wallet top-up", &order.OrderID, &order.PaymentLink)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("order_id", order.OrderID).
		Int64("user_id", userID).
		Int64("amount", amount).
		Time("expires_at", expiresAt).
		Msg("Payment order created")

	return &domain.PaymentOrder{
		OrderID:       order.OrderID,
		TransactionID: txn.ID,
		UserID:        userID,
		Amount:        amount,
		PaymentLink:   order.PaymentLink,
		Status:        domain.OrderAwaitingGateway,
		ExpiresAt:     expiresAt,
		CreatedAt:     txn.CreatedAt,
	}, nil
}

// Status returns the reconciliation view of an order without touching
// the gateway.
func (s *ReconcileServiceImpl) Status(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	txn, err := s.txRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get order: %w", err))
	}
	if txn == nil {
		return nil, apperror.ErrNotFound("order")
	}
	return s.orderView(txn), nil
}

// Reconcile fetches gateway status and settles the ledger transaction
// on a terminal gateway state. Safe to call repeatedly and
// concurrently; the guarded settlement ensures at most one caller
// observes a state change. Returns true when the order is terminal.
func (s *ReconcileServiceImpl) Reconcile(ctx context.Context, orderID string) (bool, error) {
	txn, err := s.txRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return false, apperror.InternalError(fmt.Errorf("get order: %w", err))
	}
	if txn == nil {
		return false, apperror.ErrNotFound("order")
	}
	if txn.IsTerminal() {
		return true, nil
	}

	status, err := s.gateway.FetchStatus(ctx, orderID)
	if err != nil {
		// An unreachable gateway must not keep an expired order pending
		// forever. Past the deadline the order is cancelled regardless.
		if time.Now().UTC().After(s.expiresAt(txn)) {
			s.log.Warn().Err(err).Str("order_id", orderID).Msg("Gateway unavailable past expiry, cancelling order")
			return true, s.settle(ctx, txn, domain.TransactionStatusCancelled, orderID)
		}
		return false, err
	}

	switch status {
	case domain.GatewaySuccess:
		return true, s.settle(ctx, txn, domain.TransactionStatusSuccess, orderID)
	case domain.GatewayFailed:
		return true, s.settle(ctx, txn, domain.TransactionStatusFailed, orderID)
	default:
		// Still pending on the gateway side. Expiry closes the window.
		if time.Now().UTC().After(s.expiresAt(txn)) {
			s.log.Info().Str("order_id", orderID).Msg("Payment order expired")
			return true, s.settle(ctx, txn, domain.TransactionStatusCancelled, orderID)
		}
		return false, nil
	}
}

// Cancel settles the order cancelled while still pending. If a
// concurrent reconcile already settled it, the cancellation is a
// benign no-op.
func (s *ReconcileServiceImpl) Cancel(ctx context.Context, orderID string) error {
	txn, err := s.txRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get order: %w", err))
	}
	if txn == nil {
		return apperror.ErrNotFound("order")
	}
	if txn.IsTerminal() {
		return nil
	}
	return s.settle(ctx, txn, domain.TransactionStatusCancelled, orderID)
}

// settle folds the AlreadySettled guard into success: losing the
// settlement race means another caller delivered the same terminal
// state, which is exactly the once-only semantics we want.
func (s *ReconcileServiceImpl) settle(ctx context.Context, txn *domain.Transaction, outcome domain.TransactionStatus, orderID string) error {
	err := s.walletSvc.Settle(ctx, txn.ID, outcome)
	if err != nil {
		if apperror.HasCode(err, apperror.CodeAlreadySettled) {
			s.log.Debug().Str("order_id", orderID).Msg("Order settled by concurrent caller")
			return nil
		}
		return err
	}

	s.log.Info().
		Str("order_id", orderID).
		Str("outcome", string(outcome)).
		Msg("Payment order reconciled")
	return nil
}

func (s *ReconcileServiceImpl) expiresAt(txn *domain.Transaction) time.Time {
	return txn.CreatedAt.Add(s.market.PaymentTimeout)
}

func (s *ReconcileServiceImpl) orderView(txn *domain.Transaction) *domain.PaymentOrder {
	expiresAt := s.expiresAt(txn)
	link := ""
	if txn.PaymentLink != nil {
		link = *txn.PaymentLink
	}
	orderID := ""
	if txn.GatewayOrderID != nil {
		orderID = *txn.GatewayOrderID
	}
	return &domain.PaymentOrder{
		OrderID:       orderID,
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		Amount:        txn.Amount,
		PaymentLink:   link,
		Status:        domain.OrderStatusFrom(txn.Status, expiresAt, time.Now().UTC()),
		ExpiresAt:     expiresAt,
		CreatedAt:     txn.CreatedAt,
	}
}
