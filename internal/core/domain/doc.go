// Package domain defines the core entities of the knowledge-base compiler.
//
// This package is the innermost layer of the hexagonal architecture.
// It has NO external dependencies and defines the fundamental types:
//
//   - Block: One segmented unit of a source Markdown document
//   - RegistryEntry: Lightweight indexable metadata for a block
//   - SearchDocument: Full-content record used for full-text search
//   - Graph: Cross-link nodes and edges between documents
//   - Collection: A registry or search collection in its on-disk shape
//   - Stats: Derived summary metrics for one compose run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
