package postgres

import (
	"context"
	"errors"
	"fmt"

	"gmail-marketplace/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AdminRepo implements ports.AdminRepository.
type AdminRepo struct {
	pool Pool
}

// NewAdminRepo creates a new AdminRepo.
func NewAdminRepo(pool Pool) *AdminRepo {
	return &AdminRepo{pool: pool}
}

const adminColumns = `id, username, password_hash, created_at`

// Create inserts a new operator account.
func (r *AdminRepo) Create(ctx context.Context, a *domain.AdminAccount) error {
	query := `INSERT INTO admin_accounts (id, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.pool.Exec(ctx, query, a.ID, a.Username, a.PasswordHash, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert admin: %w", err)
	}
	return nil
}

// GetByUsername fetches an operator account for login.
func (r *AdminRepo) GetByUsername(ctx context.Context, username string) (*domain.AdminAccount, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_accounts WHERE username = $1`
	return scanAdmin(r.pool.QueryRow(ctx, query, username))
}

// GetByID fetches an operator account by UUID.
func (r *AdminRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.AdminAccount, error) {
	query := `SELECT ` + adminColumns + ` FROM admin_accounts WHERE id = $1`
	return scanAdmin(r.pool.QueryRow(ctx, query, id))
}

func scanAdmin(row pgx.Row) (*domain.AdminAccount, error) {
	a := &domain.AdminAccount{}
	err := row.Scan(&a.ID, &a.Username, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan admin: %w", err)
	}
	return a, nil
}
