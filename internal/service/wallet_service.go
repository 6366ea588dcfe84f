package service

import (
	"context"
	"fmt"
	"time"

	"gmail-marketplace/internal/core/domain"
	"gmail-marketplace/internal/core/ports"
	"gmail-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService. The transaction
// history is the durable truth; the wallet_balance column is a cached
// sum of settled amounts, adjusted only inside the same database
// transaction that settles a ledger row.
type WalletServiceImpl struct {
	txRepo     ports.TransactionRepository
	userRepo   ports.UserRepository
	transactor ports.DBTransactor
	log        zerolog.Logger
}

// NewWalletService creates a new WalletServiceImpl.
func NewWalletService(
	txRepo ports.TransactionRepository,
	userRepo ports.UserRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		txRepo:     txRepo,
		userRepo:   userRepo,
		transactor: transactor,
		log:        log,
	}
}

// OpenTransaction creates a pending ledger row. The balance is not
// touched until settlement.
func (s *WalletServiceImpl) OpenTransaction(ctx context.Context, userID int64, typ domain.TransactionType, amount int64, description string, orderID, paymentLink *string) (*domain.Transaction, error) {
	if amount == 0 {
		return nil, apperror.ErrInvalidAmount()
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return nil, apperror.ErrNotFound("user")
	}
	if user.IsBanned {
		return nil, apperror.ErrUserBanned()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn := &domain.Transaction{
		ID:             uuid.New(),
		UserID:         userID,
		Type:           typ,
		Amount:         amount,
		GatewayOrderID: orderID,
		PaymentLink:    paymentLink,
		Status:         domain.TransactionStatusPending,
		Description:    description,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("transaction_id", txn.ID.String()).
		Int64("user_id", userID).
		Str("type", string(typ)).
		Int64("amount", amount).
		Msg("Ledger transaction opened")

	return txn, nil
}

// Settle performs the one-time pending -> terminal transition. The
// balance adjustment and the status flip commit together; a second
// settle of the same transaction returns AlreadySettled and leaves
// the balance untouched.
func (s *WalletServiceImpl) Settle(ctx context.Context, txID uuid.UUID, outcome domain.TransactionStatus) error {
	if outcome == domain.TransactionStatusPending {
		return apperror.ErrInvalidState("settlement outcome must be terminal")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	txn, err := s.txRepo.GetByIDForUpdate(ctx, dbTx, txID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("lock transaction: %w", err))
	}
	if txn == nil {
		return apperror.ErrNotFound("transaction")
	}
	if txn.IsTerminal() {
		return apperror.ErrAlreadySettled()
	}

	now := time.Now().UTC()
	settled, err := s.txRepo.SettleStatus(ctx, dbTx, txID, outcome, now)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("settle status: %w", err))
	}
	if !settled {
		return apperror.ErrAlreadySettled()
	}

	// Only a successful settlement moves money.
	if outcome == domain.TransactionStatusSuccess {
		if err := s.userRepo.ApplyBalance(ctx, dbTx, txn.UserID, txn.Amount); err != nil {
			return apperror.InternalError(fmt.Errorf("apply balance: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("transaction_id", txID.String()).
		Int64("user_id", txn.UserID).
		Str("outcome", string(outcome)).
		Int64("amount", txn.Amount).
		Msg("Ledger transaction settled")

	return nil
}

// Balance returns the user's cached wallet balance.
func (s *WalletServiceImpl) Balance(ctx context.Context, userID int64) (int64, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user == nil {
		return 0, apperror.ErrNotFound("user")
	}
	return user.WalletBalance, nil
}

// History returns the user's recent ledger rows, newest first.
func (s *WalletServiceImpl) History(ctx context.Context, userID int64, limit int) ([]domain.Transaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	txns, err := s.txRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list transactions: %w", err))
	}
	return txns, nil
}
