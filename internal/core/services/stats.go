package services

import (
	"context"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/core/ports/driving"
)

// Ensure StatsService implements the interface.
var _ driving.StatsService = (*StatsService)(nil)

// StatsService reads the stats snapshot history.
type StatsService struct {
	history driven.StatsHistoryStore
}

// NewStatsService creates a stats service.
func NewStatsService(history driven.StatsHistoryStore) *StatsService {
	return &StatsService{history: history}
}

// History returns up to limit snapshots, newest first.
func (s *StatsService) History(ctx context.Context, limit int) ([]domain.Stats, error) {
	if s.history == nil {
		return nil, domain.ErrStoreUnavailable
	}
	return s.history.List(ctx, limit)
}
