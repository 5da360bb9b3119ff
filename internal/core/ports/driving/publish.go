package driving

import (
	"context"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

// PublishOptions controls one publish run.
type PublishOptions struct {
	// DryRun composes and validates without writing anything.
	DryRun bool

	// Message is the commit message for versioned stores.
	Message string
}

// PublishReport describes what a publish run did.
type PublishReport struct {
	Result  *domain.ComposeResult
	Written []string
	Deleted []string
	DryRun  bool
}

// PublishService loads, composes and persists the knowledge-base artifacts.
type PublishService interface {
	// Publish composes rawMarkdown against the stored artifacts and writes
	// the result back.
	Publish(ctx context.Context, rawMarkdown string, opts PublishOptions) (*PublishReport, error)

	// Load reads the stored artifacts. Missing files yield empty collections.
	Load(ctx context.Context) (*domain.ExistingState, error)
}

// LintService checks stored artifacts.
type LintService interface {
	// Lint loads the stored artifacts and returns lint and schema findings.
	Lint(ctx context.Context) ([]domain.Finding, error)
}

// StatsService exposes the stats snapshot history.
type StatsService interface {
	// History returns up to limit snapshots, newest first.
	History(ctx context.Context, limit int) ([]domain.Stats, error)
}
