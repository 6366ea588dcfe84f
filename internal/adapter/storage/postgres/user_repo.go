package postgres

import (
	"context"
	"errors"
	"fmt"

	"gmail-marketplace/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// UserRepo implements ports.UserRepository.
type UserRepo struct {
	pool Pool
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(pool Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

const userColumns = `id, username, full_name, role, wallet_balance, is_banned, created_at`

// Upsert creates the user on first contact, or refreshes the identity
// fields on subsequent contacts. Balance, role and ban flag are never
// touched by an upsert.
func (r *UserRepo) Upsert(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (id, username, full_name, role, wallet_balance, is_banned, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username,
			full_name = EXCLUDED.full_name`

	_, err := r.pool.Exec(ctx, query,
		u.ID, u.Username, u.FullName, u.Role, u.WalletBalance, u.IsBanned, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// GetByID fetches a user without locking.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches a user with a pessimistic row lock.
// Must be called within a transaction.
func (r *UserRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 FOR UPDATE`
	return scanUser(tx.QueryRow(ctx, query, id))
}

// ApplyBalance adjusts the cached wallet balance by delta within a
// transaction. Callers must hold the row lock and have verified funds.
func (r *UserRepo) ApplyBalance(ctx context.Context, tx pgx.Tx, userID int64, delta int64) error {
	query := `UPDATE users SET wallet_balance = wallet_balance + $1 WHERE id = $2`

	tag, err := tx.Exec(ctx, query, delta, userID)
	if err != nil {
		return fmt.Errorf("apply balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %d", userID)
	}
	return nil
}

// SetRole updates a user's marketplace role within the caller's
// transaction, so promotion commits together with the approval row.
func (r *UserRepo) SetRole(ctx context.Context, tx pgx.Tx, userID int64, role domain.Role) error {
	tag, err := tx.Exec(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, userID)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %d", userID)
	}
	return nil
}

// SetBanned toggles the ban flag.
func (r *UserRepo) SetBanned(ctx context.Context, userID int64, banned bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_banned = $1 WHERE id = $2`, banned, userID)
	if err != nil {
		return fmt.Errorf("set banned: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user not found: %d", userID)
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	u := &domain.User{}
	err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &u.WalletBalance, &u.IsBanned, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}
