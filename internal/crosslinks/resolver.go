package crosslinks

import (
	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/logger"
)

// Resolver turns raw targets into graph edges. It owns the known-document
// index for one compose run, so blocks must be resolved in source order.
type Resolver struct {
	index   *Index
	matcher Matcher
}

// NewResolver creates a resolver over index. A nil matcher selects the
// substring strategy.
func NewResolver(index *Index, matcher Matcher) *Resolver {
	if index == nil {
		index = NewIndex()
	}
	if matcher == nil {
		matcher = SubstringMatcher{}
	}
	return &Resolver{index: index, matcher: matcher}
}

// Resolve returns one edge per target with source as its origin.
// Unresolved targets keep their raw text and are pending.
func (r *Resolver) Resolve(source string, targets []string) []domain.Edge {
	edges := make([]domain.Edge, 0, len(targets))
	for _, target := range targets {
		edge := domain.Edge{
			Source: source,
			Target: target,
			Type:   domain.EdgeTypeRef,
			Status: domain.EdgePending,
		}
		if path, ok := r.matcher.Match(r.index, target); ok {
			edge.Target = path
			edge.Status = domain.EdgeOK
		} else {
			logger.Debug("pending link %s -> %q", source, target)
		}
		edges = append(edges, edge)
	}
	return edges
}

// Register makes a document resolvable by later blocks of the same run.
func (r *Resolver) Register(node domain.Node) {
	r.index.AddDocument(node.Path, node.Slug, node.Title)
}

// Index returns the resolver's known-document index.
func (r *Resolver) Index() *Index {
	return r.index
}
