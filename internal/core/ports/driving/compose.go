package driving

import (
	"context"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

// ComposeService runs the ingestion pipeline over one source document.
type ComposeService interface {
	// Compose segments input.RawMarkdown into blocks and merges their
	// records into input.Existing. It performs no I/O. The only error is
	// a losslessness violation, which aborts the whole run.
	Compose(ctx context.Context, input domain.ComposeInput) (*domain.ComposeResult, error)
}
