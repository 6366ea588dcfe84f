package postgres

import (
	"context"
	"fmt"
	"time"

	"gmail-marketplace/internal/core/ports"
)

// StatsRepo implements ports.StatsRepository.
type StatsRepo struct {
	pool Pool
}

// NewStatsRepo creates a new StatsRepo.
func NewStatsRepo(pool Pool) *StatsRepo {
	return &StatsRepo{pool: pool}
}

// Overview gathers marketplace totals in a single round trip.
func (r *StatsRepo) Overview(ctx context.Context) (*ports.MarketStats, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM users),
		(SELECT COUNT(*) FROM inventory_items WHERE status = 'available'),
		(SELECT COUNT(*) FROM inventory_items WHERE status = 'sold'),
		(SELECT COUNT(*) FROM sellers WHERE status = 'pending'),
		(SELECT COUNT(DISTINCT batch_id) FROM inventory_items WHERE status = 'pending'),
		(SELECT COUNT(*) FROM withdrawals WHERE status = 'pending'),
		(SELECT COALESCE(SUM(amount), 0) FROM transactions WHERE type = 'wallet_add' AND status = 'success'),
		(SELECT COALESCE(SUM(total_earnings), 0) FROM sellers)`

	stats := &ports.MarketStats{}
	err := r.pool.QueryRow(ctx, query).Scan(
		&stats.TotalUsers, &stats.AvailableItems, &stats.SoldItems,
		&stats.PendingSellers, &stats.PendingBatches, &stats.PendingWithdrawals,
		&stats.TotalRevenue, &stats.AccruedPayouts,
	)
	if err != nil {
		return nil, fmt.Errorf("stats overview: %w", err)
	}
	return stats, nil
}

// RevenueSince aggregates settled top-ups created after the cutoff.
func (r *StatsRepo) RevenueSince(ctx context.Context, since time.Time) (*ports.RevenueWindow, error) {
	query := `SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM transactions
		WHERE type = 'wallet_add' AND status = 'success' AND created_at >= $1`

	w := &ports.RevenueWindow{}
	if err := r.pool.QueryRow(ctx, query, since).Scan(&w.Amount, &w.Count); err != nil {
		return nil, fmt.Errorf("revenue since: %w", err)
	}
	return w, nil
}
