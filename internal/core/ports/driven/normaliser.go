package driven

import (
	"context"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

// Normaliser transforms one segmented block into its registry and search records.
type Normaliser interface {
	// Normalise builds the records for block. The only error it returns is
	// a losslessness violation, which must abort the run.
	Normalise(ctx context.Context, block domain.Block) (*NormaliseResult, error)
}

// NormaliseResult contains the output of normalisation.
// Slug and path are candidates; the compose run may re-allocate them.
type NormaliseResult struct {
	// Registry is the lightweight index record.
	Registry domain.RegistryEntry

	// Search is the full-content record.
	Search domain.SearchDocument

	// Data is what the section extractor found in the block.
	Data domain.BlockData

	// DegradedID is true when the identifier is not a stable UUIDv5.
	DegradedID bool
}

// SetSlug updates slug and path on both records so they stay consistent.
func (r *NormaliseResult) SetSlug(slug, path string) {
	r.Registry.Slug = slug
	r.Registry.Path = path
	r.Search.Slug = slug
	r.Search.Path = path
}
