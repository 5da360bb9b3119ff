package memory

import (
	"context"
	"sync"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
)

// Ensure StatsHistory implements the interface.
var _ driven.StatsHistoryStore = (*StatsHistory)(nil)

// StatsHistory keeps snapshots in memory, oldest first.
type StatsHistory struct {
	mu        sync.RWMutex
	retention int
	snapshots []domain.Stats
}

// NewStatsHistory creates a history that keeps at most retention
// snapshots. Zero or less keeps everything.
func NewStatsHistory(retention int) *StatsHistory {
	return &StatsHistory{retention: retention}
}

func (h *StatsHistory) Append(ctx context.Context, snapshot domain.Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	h.snapshots = append(h.snapshots, snapshot)
	if h.retention > 0 && len(h.snapshots) > h.retention {
		h.snapshots = append([]domain.Stats(nil), h.snapshots[len(h.snapshots)-h.retention:]...)
	}
	return nil
}

func (h *StatsHistory) List(ctx context.Context, limit int) ([]domain.Stats, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := len(h.snapshots)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Stats, 0, n)
	for i := len(h.snapshots) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, h.snapshots[i])
	}
	return out, nil
}
