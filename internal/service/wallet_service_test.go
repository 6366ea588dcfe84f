package service

import (
	"context"
	"errors"
	"testing"

	"gmail-marketplace/internal/core/domain"
	"gmail-marketplace/internal/core/ports/mocks"
	"gmail-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type walletTestDeps struct {
	svc        *WalletServiceImpl
	txRepo     *mocks.MockTransactionRepository
	userRepo   *mocks.MockUserRepository
	transactor *mocks.MockDBTransactor
	ctrl       *gomock.Controller
}

func setupWalletService(t *testing.T) *walletTestDeps {
	ctrl := gomock.NewController(t)
	d := &walletTestDeps{
		txRepo:     mocks.NewMockTransactionRepository(ctrl),
		userRepo:   mocks.NewMockUserRepository(ctrl),
		transactor: mocks.NewMockDBTransactor(ctrl),
		ctrl:       ctrl,
	}
	d.svc = NewWalletService(d.txRepo, d.userRepo, d.transactor, zerolog.Nop())
	return d
}

// mockTx implements pgx.Tx for testing
type mockTx struct{ pgx.Tx }

func (m *mockTx) Rollback(_ context.Context) error { return nil }
func (m *mockTx) Commit(_ context.Context) error   { return nil }

// ==================== OpenTransaction Tests ====================

func TestWalletService_OpenTransaction_Success(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	orderID := "ORDER_abc"
	link := "https://pay.example/abc"

	d.userRepo.EXPECT().GetByID(ctx, int64(1001)).Return(&domain.User{ID: 1001}, nil)
	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().Create(ctx, tx, gomock.Any()).DoAndReturn(
		func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			assert.Equal(t, domain.TransactionStatusPending, txn.Status)
			assert.Equal(t, int64(5000), txn.Amount)
			assert.Equal(t, domain.TransactionTypeWalletAdd, txn.Type)
			return nil
		})

	txn, err := d.svc.OpenTransaction(ctx, 1001, domain.TransactionTypeWalletAdd, 5000, "wallet top-up", &orderID, &link)
	require.NoError(t, err)
	assert.Equal(t, domain.TransactionStatusPending, txn.Status)
	assert.Nil(t, txn.SettledAt)
	assert.Equal(t, &orderID, txn.GatewayOrderID)
}

func TestWalletService_OpenTransaction_ZeroAmount(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.OpenTransaction(context.Background(), 1001, domain.TransactionTypeWalletAdd, 0, "x", nil, nil)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, "WAL_002"))
}

func TestWalletService_OpenTransaction_UnknownUser(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByID(ctx, int64(42)).Return(nil, nil)

	_, err := d.svc.OpenTransaction(ctx, 42, domain.TransactionTypeWalletAdd, 5000, "x", nil, nil)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}

func TestWalletService_OpenTransaction_BannedUser(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByID(ctx, int64(43)).Return(&domain.User{ID: 43, IsBanned: true}, nil)

	_, err := d.svc.OpenTransaction(ctx, 43, domain.TransactionTypeWalletAdd, 5000, "x", nil, nil)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, "AUTH_003"))
}

// ==================== Settle Tests ====================

func TestWalletService_Settle_SuccessAdjustsBalance(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	txID := uuid.New()

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUpdate(ctx, tx, txID).Return(&domain.Transaction{
		ID:     txID,
		UserID: 1001,
		Amount: 5000,
		Status: domain.TransactionStatusPending,
	}, nil)
	d.txRepo.EXPECT().SettleStatus(ctx, tx, txID, domain.TransactionStatusSuccess, gomock.Any()).Return(true, nil)
	d.userRepo.EXPECT().ApplyBalance(ctx, tx, int64(1001), int64(5000))

	err := d.svc.Settle(ctx, txID, domain.TransactionStatusSuccess)
	require.NoError(t, err)
}

func TestWalletService_Settle_FailedLeavesBalanceUntouched(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	txID := uuid.New()

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUpdate(ctx, tx, txID).Return(&domain.Transaction{
		ID:     txID,
		UserID: 1001,
		Amount: 5000,
		Status: domain.TransactionStatusPending,
	}, nil)
	d.txRepo.EXPECT().SettleStatus(ctx, tx, txID, domain.TransactionStatusFailed, gomock.Any()).Return(true, nil)
	// No ApplyBalance expectation: a failed settlement must not move money.

	err := d.svc.Settle(ctx, txID, domain.TransactionStatusFailed)
	require.NoError(t, err)
}

func TestWalletService_Settle_AlreadyTerminal(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	txID := uuid.New()

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUpdate(ctx, tx, txID).Return(&domain.Transaction{
		ID:     txID,
		UserID: 1001,
		Amount: 5000,
		Status: domain.TransactionStatusSuccess,
	}, nil)

	err := d.svc.Settle(ctx, txID, domain.TransactionStatusCancelled)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadySettled))
}

func TestWalletService_Settle_LostRace(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	txID := uuid.New()

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUpdate(ctx, tx, txID).Return(&domain.Transaction{
		ID:     txID,
		UserID: 1001,
		Amount: 5000,
		Status: domain.TransactionStatusPending,
	}, nil)
	// Guarded update matched no pending row: another settle won.
	d.txRepo.EXPECT().SettleStatus(ctx, tx, txID, domain.TransactionStatusSuccess, gomock.Any()).Return(false, nil)

	err := d.svc.Settle(ctx, txID, domain.TransactionStatusSuccess)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeAlreadySettled))
}

func TestWalletService_Settle_PendingOutcomeRejected(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	err := d.svc.Settle(context.Background(), uuid.New(), domain.TransactionStatusPending)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidState))
}

func TestWalletService_Settle_UnknownTransaction(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	tx := &mockTx{}
	txID := uuid.New()

	d.transactor.EXPECT().Begin(ctx).Return(tx, nil)
	d.txRepo.EXPECT().GetByIDForUpdate(ctx, tx, txID).Return(nil, nil)

	err := d.svc.Settle(ctx, txID, domain.TransactionStatusSuccess)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, apperror.CodeNotFound))
}

// ==================== Balance / History Tests ====================

func TestWalletService_Balance(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByID(ctx, int64(1001)).Return(&domain.User{ID: 1001, WalletBalance: 7500}, nil)

	balance, err := d.svc.Balance(ctx, 1001)
	require.NoError(t, err)
	assert.Equal(t, int64(7500), balance)
}

func TestWalletService_Balance_RepoError(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.userRepo.EXPECT().GetByID(ctx, int64(1001)).Return(nil, errors.New("db down"))

	_, err := d.svc.Balance(ctx, 1001)
	require.Error(t, err)
	assert.True(t, apperror.HasCode(err, "SYS_001"))
}

func TestWalletService_History_ClampsLimit(t *testing.T) {
	d := setupWalletService(t)
	defer d.ctrl.Finish()

	ctx := context.Background()
	d.txRepo.EXPECT().ListByUser(ctx, int64(1001), 20).Return([]domain.Transaction{}, nil)

	_, err := d.svc.History(ctx, 1001, 0)
	require.NoError(t, err)
}
