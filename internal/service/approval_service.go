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

const defaultPageSize = 20

// ApprovalServiceImpl implements ports.ApprovalService: the three
// admin review queues. Resolving is guarded in SQL, so two admins
// racing on the same entity produce one state change and one no-op.
type ApprovalServiceImpl struct {
	userRepo       ports.UserRepository
	sellerRepo     ports.SellerRepository
	inventoryRepo  ports.InventoryRepository
	withdrawalRepo ports.WithdrawalRepository
	auditRepo      ports.AuditRepository
	stockCache     ports.StockCache
	transactor     ports.DBTransactor
	log            zerolog.Logger
}

// NewApprovalService creates a new ApprovalServiceImpl.
func NewApprovalService(
	userRepo ports.UserRepository,
	sellerRepo ports.SellerRepository,
	inventoryRepo ports.InventoryRepository,
	withdrawalRepo ports.WithdrawalRepository,
	auditRepo ports.AuditRepository,
	stockCache ports.StockCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *ApprovalServiceImpl {
	return &ApprovalServiceImpl{
		userRepo:       userRepo,
		sellerRepo:     sellerRepo,
		inventoryRepo:  inventoryRepo,
		withdrawalRepo: withdrawalRepo,
		auditRepo:      auditRepo,
		stockCache:     stockCache,
		transactor:     transactor,
		log:            log,
	}
}

// PendingSellers lists seller registrations awaiting review, oldest first.
func (s *ApprovalServiceImpl) PendingSellers(ctx context.Context, limit, offset int) ([]domain.PendingSeller, error) {
	limit, offset = normalizePage(limit, offset)
	sellers, err := s.sellerRepo.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list pending sellers: %w", err))
	}
	return sellers, nil
}

// PendingBatches lists credential batches awaiting review, oldest first.
func (s *ApprovalServiceImpl) PendingBatches(ctx context.Context, limit, offset int) ([]domain.BatchSummary, error) {
	limit, offset = normalizePage(limit, offset)
	batches, err := s.inventoryRepo.ListPendingBatches(ctx, limit, offset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list pending batches: %w", err))
	}
	return batches, nil
}

// PendingWithdrawals lists payout requests awaiting review, oldest first.
func (s *ApprovalServiceImpl) PendingWithdrawals(ctx context.Context, limit, offset int) ([]domain.PendingWithdrawal, error) {
	limit, offset = normalizePage(limit, offset)
	withdrawals, err := s.withdrawalRepo.ListPendingWithSales(ctx, limit, offset)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list pending withdrawals: %w", err))
	}
	return withdrawals, nil
}

// ResolveSeller approves or rejects a pending seller registration.
// Approval promotes the owning user to the seller role. Re-resolving
// is an idempotent no-op.
func (s *ApprovalServiceImpl) ResolveSeller(ctx context.Context, adminID uuid.UUID, sellerID uuid.UUID, approve bool) error {
	seller, err := s.sellerRepo.GetByID(ctx, sellerID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get seller: %w", err))
	}
	if seller == nil {
		return apperror.ErrNotFound("seller")
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	resolved, err := s.sellerRepo.Resolve(ctx, dbTx, sellerID, approve, adminID, time.Now().UTC())
	if err != nil {
		return apperror.InternalError(fmt.Errorf("resolve seller: %w", err))
	}
	if !resolved {
		s.log.Debug().Str("seller_id", sellerID.String()).Msg("Seller already resolved")
		return nil
	}

	// Promotion rides in the same transaction: an approved seller row
	// without the seller role must be impossible.
	if approve {
		if err := s.userRepo.SetRole(ctx, dbTx, seller.UserID, domain.RoleSeller); err != nil {
			return apperror.InternalError(fmt.Errorf("promote user: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.audit(ctx, adminID, approveAction("seller", approve), "seller", sellerID.String())
	return nil
}

// ResolveBatch approves or rejects every pending item of the batch as
// one unit. Approval makes the items sellable.
func (s *ApprovalServiceImpl) ResolveBatch(ctx context.Context, adminID uuid.UUID, batchID uuid.UUID, approve bool) error {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	moved, err := s.inventoryRepo.ResolveBatch(ctx, dbTx, batchID, approve, time.Now().UTC())
	if err != nil {
		return apperror.InternalError(fmt.Errorf("resolve batch: %w", err))
	}
	if moved == 0 {
		s.log.Debug().Str("batch_id", batchID.String()).Msg("Batch already resolved or unknown")
		return nil
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if approve {
		if err := s.stockCache.Invalidate(ctx); err != nil {
			s.log.Warn().Err(err).Msg("Stock cache invalidation failed")
		}
	}

	s.log.Info().
		Str("batch_id", batchID.String()).
		Bool("approved", approve).
		Int64("items", moved).
		Msg("Batch resolved")

	s.audit(ctx, adminID, approveAction("batch", approve), "batch", batchID.String())
	return nil
}

// ResolveWithdrawal marks a payout request paid or rejected. Paying
// debits the seller's earnings by the request-time snapshot in the
// same transaction; if the earnings no longer cover the snapshot the
// whole resolution rolls back.
func (s *ApprovalServiceImpl) ResolveWithdrawal(ctx context.Context, adminID uuid.UUID, withdrawalID uuid.UUID, approve bool) error {
	w, err := s.withdrawalRepo.GetByID(ctx, withdrawalID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("get withdrawal: %w", err))
	}
	if w == nil {
		return apperror.ErrNotFound("withdrawal")
	}

	status := domain.WithdrawalRejected
	if approve {
		status = domain.WithdrawalPaid
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	resolved, err := s.withdrawalRepo.Resolve(ctx, dbTx, withdrawalID, status, adminID, time.Now().UTC())
	if err != nil {
		return apperror.InternalError(fmt.Errorf("resolve withdrawal: %w", err))
	}
	if !resolved {
		s.log.Debug().Str("withdrawal_id", withdrawalID.String()).Msg("Withdrawal already processed")
		return nil
	}

	if approve {
		ok, err := s.sellerRepo.DebitEarnings(ctx, dbTx, w.SellerID, w.Amount)
		if err != nil {
			return apperror.InternalError(fmt.Errorf("debit earnings: %w", err))
		}
		if !ok {
			return apperror.ErrInvalidState("seller earnings no longer cover the requested payout")
		}
		// The sold items the payout covers are flagged in the same
		// transaction so the debit and the flag can never diverge.
		if _, err := s.inventoryRepo.MarkPaidOut(ctx, dbTx, w.SellerID); err != nil {
			return apperror.InternalError(fmt.Errorf("mark paid out: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("withdrawal_id", withdrawalID.String()).
		Bool("paid", approve).
		Int64("amount", w.Amount).
		Msg("Withdrawal resolved")

	action := "withdrawal.reject"
	if approve {
		action = "withdrawal.pay"
	}
	s.audit(ctx, adminID, action, "withdrawal", withdrawalID.String())
	return nil
}

// SetUserBanned toggles a user's ban flag.
func (s *ApprovalServiceImpl) SetUserBanned(ctx context.Context, adminID uuid.UUID, userID int64, banned bool) error {
	if err := s.userRepo.SetBanned(ctx, userID, banned); err != nil {
		return apperror.InternalError(fmt.Errorf("set banned: %w", err))
	}

	action := "user.unban"
	if banned {
		action = "user.ban"
	}
	s.audit(ctx, adminID, action, "user", fmt.Sprintf("%d", userID))
	return nil
}

// audit records the admin action. Audit failure never fails the
// operation it records.
func (s *ApprovalServiceImpl) audit(ctx context.Context, adminID uuid.UUID, action, entityType, entityID string) {
	entry := &domain.AuditLog{
		ID:         uuid.New(),
		AdminID:    adminID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.auditRepo.Insert(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("action", action).Str("entity_id", entityID).Msg("Audit write failed")
	}
}

func approveAction(entity string, approve bool) string {
	if approve {
		return entity + ".approve"
	}
	return entity + ".reject"
}

func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
