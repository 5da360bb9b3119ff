package driven

import (
	"context"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

// PostProcessor derives or reshapes output after the blocks are merged.
// PostProcessors are chained in a pipeline (e.g., stats, lint, sharding).
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process reads and updates result in place.
	Process(ctx context.Context, result *domain.ComposeResult) error
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs result through all processors in order.
	Process(ctx context.Context, result *domain.ComposeResult) error
}
