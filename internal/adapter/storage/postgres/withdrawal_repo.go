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

// WithdrawalRepo implements ports.WithdrawalRepository.
type WithdrawalRepo struct {
	pool Pool
}

// NewWithdrawalRepo creates a new WithdrawalRepo.
func NewWithdrawalRepo(pool Pool) *WithdrawalRepo {
	return &WithdrawalRepo{pool: pool}
}

const withdrawalColumns = `id, seller_id, user_id, amount, upi_address, status, processed_by, processed_at, created_at`

// Create inserts a new payout request.
func (r *WithdrawalRepo) Create(ctx context.Context, w *domain.Withdrawal) error {
	query := `INSERT INTO withdrawals (id, seller_id, user_id, amount, upi_address, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		w.ID, w.SellerID, w.UserID, w.Amount, w.UPIAddress, w.Status, w.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert withdrawal: %w", err)
	}
	return nil
}

// GetByID fetches a withdrawal by UUID.
func (r *WithdrawalRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Withdrawal, error) {
	query := `SELECT ` + withdrawalColumns + ` FROM withdrawals WHERE id = $1`

	w := &domain.Withdrawal{}
	err := r.pool.QueryRow(ctx, query, id).Scan(&w.ID, &w.SellerID, &w.UserID, &w.Amount,
		&w.UPIAddress, &w.Status, &w.ProcessedBy, &w.ProcessedAt, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get withdrawal: %w", err)
	}
	return w, nil
}

// ExistsPending reports whether the seller already has an open request.
func (r *WithdrawalRepo) ExistsPending(ctx context.Context, sellerID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM withdrawals WHERE seller_id = $1 AND status = 'pending')`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, sellerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("exists pending withdrawal: %w", err)
	}
	return exists, nil
}

// ListPendingWithSales returns pending withdrawals oldest-first,
// restricted to sellers with at least one sold item.
func (r *WithdrawalRepo) ListPendingWithSales(ctx context.Context, limit, offset int) ([]domain.PendingWithdrawal, error) {
	query := `SELECT w.id, w.seller_id, w.user_id, w.amount, w.upi_address, w.status,
			w.processed_by, w.processed_at, w.created_at,
			u.username, u.full_name, s.total_earnings,
			(SELECT COUNT(*) FROM inventory_items i WHERE i.seller_id = s.id AND i.status = 'sold')
		FROM withdrawals w
		JOIN sellers s ON w.seller_id = s.id
		JOIN users u ON w.user_id = u.id
		WHERE w.status = 'pending'
			AND EXISTS (SELECT 1 FROM inventory_items i WHERE i.seller_id = s.id AND i.status = 'sold')
		ORDER BY w.created_at ASC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pending withdrawals: %w", err)
	}
	defer rows.Close()

	var out []domain.PendingWithdrawal
	for rows.Next() {
		var p domain.PendingWithdrawal
		if err := rows.Scan(&p.ID, &p.SellerID, &p.UserID, &p.Amount, &p.UPIAddress, &p.Status,
			&p.ProcessedBy, &p.ProcessedAt, &p.CreatedAt,
			&p.Username, &p.FullName, &p.TotalEarnings, &p.SoldCount); err != nil {
			return nil, fmt.Errorf("scan pending withdrawal: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Resolve performs the guarded pending -> paid/rejected transition.
// Returns false when no pending row matched.
func (r *WithdrawalRepo) Resolve(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.WithdrawalStatus, adminID uuid.UUID, at time.Time) (bool, error) {
	query := `UPDATE withdrawals SET status = $1, processed_by = $2, processed_at = $3
		WHERE id = $4 AND status = 'pending'`

	tag, err := tx.Exec(ctx, query, status, adminID, at, id)
	if err != nil {
		return false, fmt.Errorf("resolve withdrawal: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
