package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gmail-marketplace/config"
	"gmail-marketplace/internal/core/domain"
	"gmail-marketplace/internal/core/ports"
	"gmail-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// purchaseLockTTL bounds how long an abandoned purchase flow can block
// a user's next attempt.
const purchaseLockTTL = 2 * time.Minute

// CommerceServiceImpl implements ports.CommerceService: the facade
// composing FIFO allocation, the wallet ledger and seller earnings
// into single logical operations.
type CommerceServiceImpl struct {
	userRepo       ports.UserRepository
	sellerRepo     ports.SellerRepository
	inventoryRepo  ports.InventoryRepository
	txRepo         ports.TransactionRepository
	withdrawalRepo ports.WithdrawalRepository
	encSvc         ports.EncryptionService
	stockCache     ports.StockCache
	sessionLock    ports.SessionLock
	notifier       ports.Notifier
	transactor     ports.DBTransactor
	market         config.MarketConfig
	log            zerolog.Logger
}

// NewCommerceService creates a new CommerceServiceImpl.
func NewCommerceService(
	userRepo ports.UserRepository,
	sellerRepo ports.SellerRepository,
	inventoryRepo ports.InventoryRepository,
	txRepo ports.TransactionRepository,
	withdrawalRepo ports.WithdrawalRepository,
	encSvc ports.EncryptionService,
	stockCache ports.StockCache,
	sessionLock ports.SessionLock,
	notifier ports.Notifier,
	transactor ports.DBTransactor,
	market config.MarketConfig,
	log zerolog.Logger,
) *CommerceServiceImpl {
	return &CommerceServiceImpl{
		userRepo:       userRepo,
		sellerRepo:     sellerRepo,
		inventoryRepo:  inventoryRepo,
		txRepo:         txRepo,
		withdrawalRepo: withdrawalRepo,
		encSvc:         encSvc,
		stockCache:     stockCache,
		sessionLock:    sessionLock,
		notifier:       notifier,
		transactor:     transactor,
		market:         market,
		log:            log,
	}
}

// RegisterUser upserts the user and returns the persisted state. An
// existing user keeps their balance, role and ban flag; only identity
// fields refresh.
func (s *CommerceServiceImpl) RegisterUser(ctx context.Context, id int64, username, fullName string) (*domain.User, error) {
	u := &domain.User{
		ID:            id,
		Username:      username,
		FullName:      fullName,
		Role:          domain.RoleBuyer,
		WalletBalance: 0,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.userRepo.Upsert(ctx, u); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("upsert user: %w", err))
	}

	persisted, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	return persisted, nil
}

// Stock returns the count of available items, served from cache when
// fresh. Cache errors fall through to the database.
func (s *CommerceServiceImpl) Stock(ctx context.Context) (int, error) {
	count, ok, err := s.stockCache.Get(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Stock cache read failed, falling through to database")
	} else if ok {
		return count, nil
	}

	count, err = s.inventoryRepo.CountAvailable(ctx)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("count available: %w", err))
	}

	if err := s.stockCache.Set(ctx, count); err != nil {
		s.log.Warn().Err(err).Msg("Stock cache write failed")
	}
	return count, nil
}

// Purchase allocates quantity items FIFO, debits the buyer's wallet
// and credits seller earnings, all in one database transaction. Any
// failure rolls back every effect: no partial allocation, no dangling
// debit, no stranded earnings.
func (s *CommerceServiceImpl) Purchase(ctx context.Context, buyerID int64, quantity int) (*ports.PurchaseResult, error) {
	if quantity < s.market.MinBuyQuantity {
		return nil, apperror.ErrBelowMinimumQuantity(s.market.MinBuyQuantity)
	}

	acquired, err := s.sessionLock.Acquire(ctx, buyerID, purchaseLockTTL)
	if err != nil {
		s.log.Warn().Err(err).Int64("user_id", buyerID).Msg("Session lock unavailable, proceeding unlocked")
	} else if !acquired {
		return nil, apperror.ErrPurchaseInProgress()
	} else {
		defer func() {
			if err := s.sessionLock.Release(ctx, buyerID); err != nil {
				s.log.Warn().Err(err).Int64("user_id", buyerID).Msg("Session lock release failed")
			}
		}()
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock the buyer row first, then the inventory head. Every
	// purchase takes locks in the same order, so racing buyers
	// serialize instead of deadlocking.
	buyer, err := s.userRepo.GetByIDForUpdate(ctx, dbTx, buyerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock buyer: %w", err))
	}
	if buyer == nil {
		return nil, apperror.ErrNotFound("user")
	}
	if buyer.IsBanned {
		return nil, apperror.ErrUserBanned()
	}

	totalCost := int64(quantity) * s.market.BuyRate
	if buyer.WalletBalance < totalCost {
		return nil, apperror.ErrInsufficientBalance(buyer.WalletBalance, totalCost)
	}

	items, err := s.inventoryRepo.SelectAvailableForUpdate(ctx, dbTx, quantity)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("select inventory: %w", err))
	}
	if len(items) < quantity {
		return nil, apperror.ErrInsufficientInventory(len(items), quantity)
	}

	now := time.Now().UTC()
	itemIDs := make([]uuid.UUID, len(items))
	for i := range items {
		itemIDs[i] = items[i].ID
	}

	if err := s.inventoryRepo.MarkSold(ctx, dbTx, itemIDs, buyerID, now); err != nil {
		// A claim mismatch on rows we hold locks for is corruption,
		// not a lost race. Keep the integrity code visible.
		if apperror.HasCode(err, apperror.CodeIntegrityViolation) {
			return nil, err
		}
		return nil, apperror.InternalError(fmt.Errorf("mark sold: %w", err))
	}

	// The debit is born settled: the purchase either commits whole or
	// not at all, so there is no pending window to reconcile.
	debit := &domain.Transaction{
		ID:          uuid.New(),
		UserID:      buyerID,
		Type:        domain.TransactionTypePurchase,
		Amount:      -totalCost,
		Status:      domain.TransactionStatusSuccess,
		Description: fmt.Sprintf("purchase of %d accounts", quantity),
		CreatedAt:   now,
		SettledAt:   &now,
	}
	if err := s.txRepo.Create(ctx, dbTx, debit); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create debit: %w", err))
	}
	if err := s.userRepo.ApplyBalance(ctx, dbTx, buyerID, -totalCost); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("apply debit: %w", err))
	}

	// Accrue earnings per seller.
	earnings := make(map[uuid.UUID]int64)
	for i := range items {
		earnings[items[i].SellerID] += s.market.SellRate
	}
	for sellerID, amount := range earnings {
		if err := s.sellerRepo.CreditEarnings(ctx, dbTx, sellerID, amount); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("credit earnings: %w", err))
		}
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	if err := s.stockCache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Stock cache invalidation failed")
	}

	creds := make([]domain.Credential, 0, len(items))
	for i := range items {
		password, err := s.encSvc.Decrypt(items[i].PasswordEnc)
		if err != nil {
			// The sale is committed; surface the credential problem
			// instead of pretending the purchase failed.
			s.log.Error().Err(err).Str("item_id", items[i].ID.String()).Msg("Credential decryption failed after sale")
			return nil, apperror.InternalError(fmt.Errorf("decrypt credential: %w", err))
		}
		creds = append(creds, domain.Credential{Email: items[i].Email, Password: password})
		items[i].Status = domain.ItemSold
		items[i].BuyerID = &buyerID
		items[i].SoldAt = &now
	}

	s.log.Info().
		Int64("buyer_id", buyerID).
		Int("quantity", quantity).
		Int64("total_cost", totalCost).
		Msg("Purchase completed")

	return &ports.PurchaseResult{
		Items:     items,
		Creds:     creds,
		TotalCost: totalCost,
		Balance:   buyer.WalletBalance - totalCost,
	}, nil
}

// Purchases returns the buyer's purchased items, newest first.
func (s *CommerceServiceImpl) Purchases(ctx context.Context, buyerID int64) ([]domain.InventoryItem, error) {
	items, err := s.inventoryRepo.ListByBuyer(ctx, buyerID, 50)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list purchases: %w", err))
	}
	for i := range items {
		if err := items[i].CheckIntegrity(); err != nil {
			return nil, apperror.ErrIntegrityViolation(err.Error())
		}
	}
	return items, nil
}

// RegisterSeller opens a pending seller registration for approval.
func (s *CommerceServiceImpl) RegisterSeller(ctx context.Context, userID int64, upiAddress string) (*domain.Seller, error) {
	upiAddress = strings.TrimSpace(upiAddress)
	if upiAddress == "" || !strings.Contains(upiAddress, "@") {
		return nil, apperror.Validation("a valid UPI address is required")
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

	existing, err := s.sellerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get seller: %w", err))
	}
	if existing != nil {
		return nil, apperror.ErrInvalidState("seller registration already exists")
	}

	seller := &domain.Seller{
		ID:         uuid.New(),
		UserID:     userID,
		Status:     domain.ApprovalPending,
		UPIAddress: upiAddress,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.sellerRepo.Create(ctx, seller); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create seller: %w", err))
	}

	s.log.Info().Int64("user_id", userID).Str("seller_id", seller.ID.String()).Msg("Seller registration submitted")
	return seller, nil
}

// SubmitBatch stores a seller's credentials as one pending batch.
// Items become sellable only after admin approval.
func (s *CommerceServiceImpl) SubmitBatch(ctx context.Context, userID int64, creds []domain.Credential) (uuid.UUID, error) {
	if len(creds) < s.market.MinSellQuantity {
		return uuid.Nil, apperror.ErrBelowMinimumQuantity(s.market.MinSellQuantity)
	}

	seller, err := s.sellerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return uuid.Nil, apperror.InternalError(fmt.Errorf("get seller: %w", err))
	}
	if seller == nil {
		return uuid.Nil, apperror.ErrNotFound("seller")
	}
	if !seller.IsApproved() {
		return uuid.Nil, apperror.ErrInvalidState("seller is not approved")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return uuid.Nil, apperror.InternalError(fmt.Errorf("get user: %w", err))
	}
	if user != nil && user.IsBanned {
		return uuid.Nil, apperror.ErrUserBanned()
	}

	seen := make(map[string]struct{}, len(creds))
	for _, c := range creds {
		email := strings.ToLower(strings.TrimSpace(c.Email))
		if email == "" || c.Password == "" {
			return uuid.Nil, apperror.Validation("every credential needs an email and password")
		}
		if _, dup := seen[email]; dup {
			return uuid.Nil, apperror.ErrDuplicateCredential(email)
		}
		seen[email] = struct{}{}
	}

	batchID := uuid.New()
	now := time.Now().UTC()
	items := make([]domain.InventoryItem, 0, len(creds))
	for _, c := range creds {
		enc, err := s.encSvc.Encrypt(c.Password)
		if err != nil {
			return uuid.Nil, apperror.InternalError(fmt.Errorf("encrypt credential: %w", err))
		}
		items = append(items, domain.InventoryItem{
			ID:          uuid.New(),
			SellerID:    seller.ID,
			Email:       strings.ToLower(strings.TrimSpace(c.Email)),
			PasswordEnc: enc,
			BatchID:     batchID,
			Status:      domain.ItemPending,
			CreatedAt:   now,
		})
	}

	if err := s.inventoryRepo.InsertBatch(ctx, items); err != nil {
		return uuid.Nil, apperror.InternalError(fmt.Errorf("insert batch: %w", err))
	}

	s.notifier.BatchSubmitted(ctx, &domain.BatchSummary{
		BatchID:     batchID,
		SellerID:    seller.ID,
		UserID:      userID,
		Count:       len(items),
		SubmittedAt: now,
	})

	s.log.Info().
		Str("batch_id", batchID.String()).
		Str("seller_id", seller.ID.String()).
		Int("count", len(items)).
		Msg("Batch submitted for review")

	return batchID, nil
}

// SellerOverview returns the seller profile with inventory stats.
func (s *CommerceServiceImpl) SellerOverview(ctx context.Context, userID int64) (*domain.Seller, *domain.SellerStats, error) {
	seller, err := s.sellerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("get seller: %w", err))
	}
	if seller == nil {
		return nil, nil, apperror.ErrNotFound("seller")
	}

	stats, err := s.inventoryRepo.SellerStats(ctx, seller.ID)
	if err != nil {
		return nil, nil, apperror.InternalError(fmt.Errorf("seller stats: %w", err))
	}
	return seller, stats, nil
}

// RequestWithdrawal opens a payout request for the seller's full
// accrued earnings at request time. The snapshot amount is what an
// admin later pays out, even if earnings keep accruing meanwhile.
func (s *CommerceServiceImpl) RequestWithdrawal(ctx context.Context, userID int64) (*domain.Withdrawal, error) {
	seller, err := s.sellerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get seller: %w", err))
	}
	if seller == nil {
		return nil, apperror.ErrNotFound("seller")
	}
	if !seller.IsApproved() {
		return nil, apperror.ErrInvalidState("seller is not approved")
	}
	if seller.TotalEarnings <= 0 {
		return nil, apperror.Validation("no earnings to withdraw")
	}

	pending, err := s.withdrawalRepo.ExistsPending(ctx, seller.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check pending withdrawal: %w", err))
	}
	if pending {
		return nil, apperror.ErrInvalidState("a withdrawal request is already pending")
	}

	w := &domain.Withdrawal{
		ID:         uuid.New(),
		SellerID:   seller.ID,
		UserID:     userID,
		Amount:     seller.TotalEarnings,
		UPIAddress: seller.UPIAddress,
		Status:     domain.WithdrawalPending,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.withdrawalRepo.Create(ctx, w); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create withdrawal: %w", err))
	}

	s.notifier.WithdrawalRequested(ctx, w)

	s.log.Info().
		Str("withdrawal_id", w.ID.String()).
		Str("seller_id", seller.ID.String()).
		Int64("amount", w.Amount).
		Msg("Withdrawal requested")

	return w, nil
}
