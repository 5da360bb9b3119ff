package driven

import "github.com/udigitrentals/github-kb/internal/core/domain"

// Artifact kinds understood by a SchemaValidator.
const (
	KindRegistry = "registry"
	KindSearch   = "search"
	KindCross    = "cross"
	KindStats    = "stats"
)

// SchemaValidator checks serialised artifacts against their JSON schemas.
// Violations are reported as findings and never block persistence.
type SchemaValidator interface {
	// Validate returns one finding per violation. Unknown kinds and
	// unparseable payloads are reported as findings too.
	Validate(kind string, payload []byte) []domain.Finding
}
