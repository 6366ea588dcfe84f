package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gmail-marketplace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SellerRepo implements ports.SellerRepository.
type SellerRepo struct {
	pool Pool
}

// NewSellerRepo creates a new SellerRepo.
func NewSellerRepo(pool Pool) *SellerRepo {
	return &SellerRepo{pool: pool}
}

const sellerColumns = `id, user_id, status, upi_address, total_earnings, approved_by, approved_at, created_at`

// Create inserts a new seller profile.
func (r *SellerRepo) Create(ctx context.Context, s *domain.Seller) error {
	query := `INSERT INTO sellers (id, user_id, status, upi_address, total_earnings, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.pool.Exec(ctx, query, s.ID, s.UserID, s.Status, s.UPIAddress, s.TotalEarnings, s.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert seller: %w", err)
	}
	return nil
}

// GetByID fetches a seller by profile ID.
func (r *SellerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Seller, error) {
	query := `SELECT ` + sellerColumns + ` FROM sellers WHERE id = $1`
	return scanSeller(r.pool.QueryRow(ctx, query, id))
}

// GetByUserID fetches a seller by owning user.
func (r *SellerRepo) GetByUserID(ctx context.Context, userID int64) (*domain.Seller, error) {
	query := `SELECT ` + sellerColumns + ` FROM sellers WHERE user_id = $1`
	return scanSeller(r.pool.QueryRow(ctx, query, userID))
}

// ListPending returns pending registrations oldest-first.
func (r *SellerRepo) ListPending(ctx context.Context, limit, offset int) ([]domain.PendingSeller, error) {
	query := `SELECT s.id, s.user_id, s.status, s.upi_address, s.total_earnings,
			s.approved_by, s.approved_at, s.created_at, u.username, u.full_name
		FROM sellers s
		JOIN users u ON s.user_id = u.id
		WHERE s.status = 'pending'
		ORDER BY s.created_at ASC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pending sellers: %w", err)
	}
	defer rows.Close()

	var out []domain.PendingSeller
	for rows.Next() {
		var p domain.PendingSeller
		if err := rows.Scan(&p.ID, &p.UserID, &p.Status, &p.UPIAddress, &p.TotalEarnings,
			&p.ApprovedBy, &p.ApprovedAt, &p.CreatedAt, &p.Username, &p.FullName); err != nil {
			return nil, fmt.Errorf("scan pending seller: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Resolve performs the guarded pending -> approved/rejected transition.
// Returns false when no pending row matched, which callers treat as an
// idempotent no-op.
func (r *SellerRepo) Resolve(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, approve bool, adminID uuid.UUID, at time.Time) (bool, error) {
	status := domain.ApprovalRejected
	if approve {
		status = domain.ApprovalApproved
	}

	query := `UPDATE sellers SET status = $1, approved_by = $2, approved_at = $3
		WHERE id = $4 AND status = 'pending'`

	tag, err := tx.Exec(ctx, query, status, adminID, at, sellerID)
	if err != nil {
		return false, fmt.Errorf("resolve seller: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// CreditEarnings accrues payout for a sold item within a transaction.
func (r *SellerRepo) CreditEarnings(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, amount int64) error {
	query := `UPDATE sellers SET total_earnings = total_earnings + $1 WHERE id = $2`

	tag, err := tx.Exec(ctx, query, amount, sellerID)
	if err != nil {
		return fmt.Errorf("credit earnings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("seller not found: %s", sellerID)
	}
	return nil
}

// DebitEarnings decrements accrued earnings on payout. The update is
// guarded so earnings never go negative; false means insufficient
// accrued earnings.
func (r *SellerRepo) DebitEarnings(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID, amount int64) (bool, error) {
	query := `UPDATE sellers SET total_earnings = total_earnings - $1
		WHERE id = $2 AND total_earnings >= $1`

	tag, err := tx.Exec(ctx, query, amount, sellerID)
	if err != nil {
		return false, fmt.Errorf("debit earnings: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func scanSeller(row pgx.Row) (*domain.Seller, error) {
	s := &domain.Seller{}
	err := row.Scan(&s.ID, &s.UserID, &s.Status, &s.UPIAddress, &s.TotalEarnings,
		&s.ApprovedBy, &s.ApprovedAt, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan seller: %w", err)
	}
	return s, nil
}
