package postgres

import (
	"context"
	"testing"
	"time"

	"gmail-marketplace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newTestTransaction(userID int64) *domain.Transaction {
	return &domain.Transaction{
		ID:             uuid.New(),
		UserID:         userID,
		Type:           domain.TransactionTypeWalletAdd,
		Amount:         5000,
		GatewayOrderID: strPtr("ORDER_abc123"),
		PaymentLink:    strPtr("https://payments.example/session/abc"),
		Status:         domain.TransactionStatusPending,
		Description:    "wallet top-up",
		CreatedAt:      time.Now().UTC().Truncate(time.Microsecond),
		SettledAt:      nil,
	}
}

func txColumnNames() []string {
	return []string{"id", "user_id", "type", "amount", "gateway_order_id",
		"payment_link", "status", "description", "created_at", "settled_at"}
}

func txRow(t *domain.Transaction) *pgxmock.Rows {
	return pgxmock.NewRows(txColumnNames()).AddRow(
		t.ID, t.UserID, t.Type, t.Amount, t.GatewayOrderID,
		t.PaymentLink, t.Status, t.Description, t.CreatedAt, t.SettledAt,
	)
}

func TestTransactionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(1001)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO transactions").
		WithArgs(txn.ID, txn.UserID, txn.Type, txn.Amount, txn.GatewayOrderID,
			txn.PaymentLink, txn.Status, txn.Description, txn.CreatedAt, txn.SettledAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, txn)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByOrderID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(1001)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE gateway_order_id").
		WithArgs(*txn.GatewayOrderID).
		WillReturnRows(txRow(txn))

	result, err := repo.GetByOrderID(context.Background(), *txn.GatewayOrderID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, txn.ID, result.ID)
	assert.Equal(t, domain.TransactionStatusPending, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_GetByOrderID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE gateway_order_id").
		WithArgs("ORDER_unknown").
		WillReturnRows(pgxmock.NewRows(txColumnNames()))

	result, err := repo.GetByOrderID(context.Background(), "ORDER_unknown")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_SettleStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txnID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs(domain.TransactionStatusSuccess, now, txnID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	settled, err := repo.SettleStatus(context.Background(), tx, txnID, domain.TransactionStatusSuccess, now)
	require.NoError(t, err)
	assert.True(t, settled)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_SettleStatus_AlreadySettled(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txnID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE transactions SET status").
		WithArgs(domain.TransactionStatusCancelled, now, txnID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	settled, err := repo.SettleStatus(context.Background(), tx, txnID, domain.TransactionStatusCancelled, now)
	require.NoError(t, err)
	assert.False(t, settled, "non-pending row must not transition")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_SumSettledByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)

	mock.ExpectQuery("SELECT COALESCE.+ FROM transactions").
		WithArgs(int64(1001)).
		WillReturnRows(pgxmock.NewRows([]string{"sum"}).AddRow(int64(2500)))

	sum, err := repo.SumSettledByUser(context.Background(), 1001)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionRepo_ListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewTransactionRepo(mock)
	txn := newTestTransaction(1001)

	mock.ExpectQuery("SELECT .+ FROM transactions WHERE user_id").
		WithArgs(int64(1001), 10).
		WillReturnRows(txRow(txn))

	result, err := repo.ListByUser(context.Background(), 1001, 10)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, txn.ID, result[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
