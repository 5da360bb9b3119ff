package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
)

// Ensure StatsHistory implements the interface.
var _ driven.StatsHistoryStore = (*StatsHistory)(nil)

// StatsHistory is the append-only snapshot log in the stats_history table.
type StatsHistory struct {
	store     *Store
	retention int
}

// Append inserts a snapshot and trims rows beyond the retention window
// in the same transaction.
func (h *StatsHistory) Append(ctx context.Context, snapshot domain.Stats) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshalling stats: %w", err)
	}

	tx, err := h.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO stats_history (generated_at, registry_items, graph_edges, payload)
		VALUES (?, ?, ?, ?)
	`, snapshot.GeneratedAt.UTC(), snapshot.RegistryItems, snapshot.GraphEdges, string(payload)); err != nil {
		return fmt.Errorf("saving stats: %w", err)
	}

	if h.retention > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM stats_history
			WHERE id NOT IN (SELECT id FROM stats_history ORDER BY id DESC LIMIT ?)
		`, h.retention); err != nil {
			return fmt.Errorf("trimming stats history: %w", err)
		}
	}
	return tx.Commit()
}

// List returns up to limit snapshots, newest first.
func (h *StatsHistory) List(ctx context.Context, limit int) ([]domain.Stats, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := h.store.db.QueryContext(ctx,
		"SELECT payload FROM stats_history ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing stats: %w", err)
	}
	defer rows.Close()

	var out []domain.Stats
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning stats: %w", err)
		}
		var snapshot domain.Stats
		if err := json.Unmarshal([]byte(payload), &snapshot); err != nil {
			return nil, fmt.Errorf("decoding stats: %w", err)
		}
		out = append(out, snapshot)
	}
	return out, rows.Err()
}
