package service

import (
	"context"
	"fmt"
	"time"

	"gmail-marketplace/internal/core/ports"
	"gmail-marketplace/pkg/apperror"

	"github.com/rs/zerolog"
)

// StatsServiceImpl implements ports.StatsService.
type StatsServiceImpl struct {
	statsRepo ports.StatsRepository
	log       zerolog.Logger
}

// NewStatsService creates a new StatsServiceImpl.
func NewStatsService(statsRepo ports.StatsRepository, log zerolog.Logger) *StatsServiceImpl {
	return &StatsServiceImpl{statsRepo: statsRepo, log: log}
}

// Overview returns the marketplace totals for the admin dashboard.
func (s *StatsServiceImpl) Overview(ctx context.Context) (*ports.MarketStats, error) {
	stats, err := s.statsRepo.Overview(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("stats overview: %w", err))
	}
	return stats, nil
}

// Revenue returns settled top-up revenue over trailing windows.
func (s *StatsServiceImpl) Revenue(ctx context.Context) ([]ports.RevenueWindow, error) {
	now := time.Now().UTC()
	windows := []struct {
		period string
		since  time.Time
	}{
		{"daily", now.Add(-24 * time.Hour)},
		{"weekly", now.AddDate(0, 0, -7)},
		{"monthly", now.AddDate(0, -1, 0)},
		{"yearly", now.AddDate(-1, 0, 0)},
	}

	out := make([]ports.RevenueWindow, 0, len(windows))
	for _, w := range windows {
		rev, err := s.statsRepo.RevenueSince(ctx, w.since)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("revenue %s: %w", w.period, err))
		}
		rev.Period = w.period
		out = append(out, *rev)
	}
	return out, nil
}
