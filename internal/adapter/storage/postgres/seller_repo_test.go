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

func newTestSeller(userID int64) *domain.Seller {
	return &domain.Seller{
		ID:            uuid.New(),
		UserID:        userID,
		Status:        domain.ApprovalPending,
		UPIAddress:    "seller@upi",
		TotalEarnings: 0,
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func sellerColumnNames() []string {
	return []string{"id", "user_id", "status", "upi_address", "total_earnings",
		"approved_by", "approved_at", "created_at"}
}

func sellerRow(s *domain.Seller) *pgxmock.Rows {
	return pgxmock.NewRows(sellerColumnNames()).AddRow(
		s.ID, s.UserID, s.Status, s.UPIAddress, s.TotalEarnings,
		s.ApprovedBy, s.ApprovedAt, s.CreatedAt,
	)
}

func TestSellerRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSellerRepo(mock)
	s := newTestSeller(1001)

	mock.ExpectExec("INSERT INTO sellers").
		WithArgs(s.ID, s.UserID, s.Status, s.UPIAddress, s.TotalEarnings, s.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), s)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSellerRepo_GetByUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSellerRepo(mock)
	s := newTestSeller(1001)

	mock.ExpectQuery("SELECT .+ FROM sellers WHERE user_id").
		WithArgs(s.UserID).
		WillReturnRows(sellerRow(s))

	result, err := repo.GetByUserID(context.Background(), s.UserID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, s.ID, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSellerRepo_GetByUserID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSellerRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM sellers WHERE user_id").
		WithArgs(int64(9999)).
		WillReturnRows(pgxmock.NewRows(sellerColumnNames()))

	result, err := repo.GetByUserID(context.Background(), 9999)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSellerRepo_Resolve(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSellerRepo(mock)
	sellerID := uuid.New()
	adminID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sellers SET status").
		WithArgs(domain.ApprovalApproved, adminID, now, sellerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	resolved, err := repo.Resolve(context.Background(), tx, sellerID, true, adminID, now)
	require.NoError(t, err)
	assert.True(t, resolved)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSellerRepo_Resolve_AlreadyResolved(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSellerRepo(mock)
	sellerID := uuid.New()
	adminID := uuid.New()
	now := time.Now().UTC()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sellers SET status").
		WithArgs(domain.ApprovalRejected, adminID, now, sellerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	resolved, err := repo.Resolve(context.Background(), tx, sellerID, false, adminID, now)
	require.NoError(t, err)
	assert.False(t, resolved, "re-resolving must be a no-op")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSellerRepo_CreditEarnings(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSellerRepo(mock)
	sellerID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sellers SET total_earnings").
		WithArgs(int64(900), sellerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.CreditEarnings(context.Background(), tx, sellerID, 900)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSellerRepo_DebitEarnings_Insufficient(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewSellerRepo(mock)
	sellerID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE sellers SET total_earnings").
		WithArgs(int64(5000), sellerID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	ok, err := repo.DebitEarnings(context.Background(), tx, sellerID, 5000)
	require.NoError(t, err)
	assert.False(t, ok, "debit above accrued earnings must not apply")
	assert.NoError(t, mock.ExpectationsWereMet())
}
