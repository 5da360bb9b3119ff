package driven

import (
	"context"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

// StatsHistoryStore is the append-only log of stats snapshots.
type StatsHistoryStore interface {
	// Append records a snapshot and drops the oldest entries beyond the
	// retention window.
	Append(ctx context.Context, snapshot domain.Stats) error

	// List returns up to limit snapshots, newest first.
	// A limit of zero or less returns all of them.
	List(ctx context.Context, limit int) ([]domain.Stats, error)
}
