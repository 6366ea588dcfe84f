package postgres

import (
	"context"
	"fmt"
	"time"

	"gmail-marketplace/internal/core/domain"
	"gmail-marketplace/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InventoryRepo implements ports.InventoryRepository.
type InventoryRepo struct {
	pool Pool
}

// NewInventoryRepo creates a new InventoryRepo.
func NewInventoryRepo(pool Pool) *InventoryRepo {
	return &InventoryRepo{pool: pool}
}

const itemColumns = `id, seq, seller_id, email, password_enc, batch_id, status, buyer_id, paid_out, created_at, approved_at, sold_at`

// InsertBatch inserts pending items sharing one batch ID in one
// transaction: a duplicate email mid-batch rolls back the whole batch
// instead of stranding a partial one. seq is assigned by the database
// sequence and fixes FIFO order forever.
func (r *InventoryRepo) InsertBatch(ctx context.Context, items []domain.InventoryItem) error {
	query := `INSERT INTO inventory_items (id, seller_id, email, password_enc, batch_id, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin insert batch: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	for i := range items {
		it := &items[i]
		_, err := tx.Exec(ctx, query,
			it.ID, it.SellerID, it.Email, it.PasswordEnc, it.BatchID, it.Status, it.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert inventory item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit insert batch: %w", err)
	}
	return nil
}

// ResolveBatch transitions every pending item of the batch in one
// statement. Zero rows affected means already resolved or unknown
// batch; callers treat both as a no-op.
func (r *InventoryRepo) ResolveBatch(ctx context.Context, tx pgx.Tx, batchID uuid.UUID, approve bool, at time.Time) (int64, error) {
	status := domain.ItemRejected
	if approve {
		status = domain.ItemAvailable
	}

	query := `UPDATE inventory_items SET status = $1, approved_at = $2
		WHERE batch_id = $3 AND status = 'pending'`

	tag, err := tx.Exec(ctx, query, status, at, batchID)
	if err != nil {
		return 0, fmt.Errorf("resolve batch: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountAvailable returns the current sellable stock.
func (r *InventoryRepo) CountAvailable(ctx context.Context) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM inventory_items WHERE status = 'available'`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count available: %w", err)
	}
	return count, nil
}

// SelectAvailableForUpdate locks and returns up to limit available
// items, oldest first by insertion sequence. Plain FOR UPDATE (not
// SKIP LOCKED): FIFO fairness and all-or-nothing allocation require
// waiting on the contended oldest rows, so two racing allocators
// serialize on the same head of the queue and can never claim
// overlapping rows.
func (r *InventoryRepo) SelectAvailableForUpdate(ctx context.Context, tx pgx.Tx, limit int) ([]domain.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items
		WHERE status = 'available'
		ORDER BY seq ASC
		LIMIT $1
		FOR UPDATE`

	rows, err := tx.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("select available for update: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// MarkSold claims the given items for the buyer. Guarded on status so
// a row that slipped out of available since selection fails loudly.
func (r *InventoryRepo) MarkSold(ctx context.Context, tx pgx.Tx, itemIDs []uuid.UUID, buyerID int64, at time.Time) error {
	query := `UPDATE inventory_items SET status = 'sold', buyer_id = $1, sold_at = $2
		WHERE id = ANY($3) AND status = 'available'`

	tag, err := tx.Exec(ctx, query, buyerID, at, itemIDs)
	if err != nil {
		return fmt.Errorf("mark sold: %w", err)
	}
	if tag.RowsAffected() != int64(len(itemIDs)) {
		return apperror.ErrIntegrityViolation(
			fmt.Sprintf("claimed %d of %d locked items", tag.RowsAffected(), len(itemIDs)))
	}
	return nil
}

// MarkPaidOut flags the seller's sold, not-yet-paid items as paid out.
// Runs inside the withdrawal approval transaction so the payout and
// the flag commit together.
func (r *InventoryRepo) MarkPaidOut(ctx context.Context, tx pgx.Tx, sellerID uuid.UUID) (int64, error) {
	query := `UPDATE inventory_items SET paid_out = TRUE
		WHERE seller_id = $1 AND status = 'sold' AND paid_out = FALSE`

	tag, err := tx.Exec(ctx, query, sellerID)
	if err != nil {
		return 0, fmt.Errorf("mark paid out: %w", err)
	}
	return tag.RowsAffected(), nil
}

// ListPendingBatches returns pending batch summaries oldest-first.
func (r *InventoryRepo) ListPendingBatches(ctx context.Context, limit, offset int) ([]domain.BatchSummary, error) {
	query := `SELECT i.batch_id, i.seller_id, s.user_id, u.username,
			COUNT(*), MIN(i.created_at),
			(ARRAY_AGG(i.email ORDER BY i.seq))[1:3]
		FROM inventory_items i
		JOIN sellers s ON i.seller_id = s.id
		JOIN users u ON s.user_id = u.id
		WHERE i.status = 'pending'
		GROUP BY i.batch_id, i.seller_id, s.user_id, u.username
		ORDER BY MIN(i.created_at) ASC
		LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pending batches: %w", err)
	}
	defer rows.Close()

	var out []domain.BatchSummary
	for rows.Next() {
		var b domain.BatchSummary
		if err := rows.Scan(&b.BatchID, &b.SellerID, &b.UserID, &b.Username,
			&b.Count, &b.SubmittedAt, &b.SampleEmails); err != nil {
			return nil, fmt.Errorf("scan batch summary: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListByBuyer returns a buyer's purchased items, newest first.
func (r *InventoryRepo) ListByBuyer(ctx context.Context, buyerID int64, limit int) ([]domain.InventoryItem, error) {
	query := `SELECT ` + itemColumns + ` FROM inventory_items
		WHERE buyer_id = $1 AND status = 'sold'
		ORDER BY sold_at DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, buyerID, limit)
	if err != nil {
		return nil, fmt.Errorf("list by buyer: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// SellerStats summarises a seller's inventory by lifecycle state.
func (r *InventoryRepo) SellerStats(ctx context.Context, sellerID uuid.UUID) (*domain.SellerStats, error) {
	query := `SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'available'),
			COUNT(*) FILTER (WHERE status = 'sold')
		FROM inventory_items WHERE seller_id = $1`

	stats := &domain.SellerStats{}
	err := r.pool.QueryRow(ctx, query, sellerID).Scan(&stats.Pending, &stats.Available, &stats.Sold)
	if err != nil {
		return nil, fmt.Errorf("seller stats: %w", err)
	}
	return stats, nil
}

func scanItems(rows pgx.Rows) ([]domain.InventoryItem, error) {
	var out []domain.InventoryItem
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(&it.ID, &it.Seq, &it.SellerID, &it.Email, &it.PasswordEnc,
			&it.BatchID, &it.Status, &it.BuyerID, &it.PaidOut,
			&it.CreatedAt, &it.ApprovedAt, &it.SoldAt); err != nil {
			return nil, fmt.Errorf("scan inventory item: %w", err)
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
