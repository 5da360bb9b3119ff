package crosslinks

import (
	"strings"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

// Index maps known paths, slugs and titles to canonical document paths.
// Keys keep insertion order so fuzzy matching is deterministic.
type Index struct {
	keys  []string
	paths map[string]string
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{paths: make(map[string]string)}
}

// SeedIndex builds an index from an existing registry and graph. Registry
// entries come first; either argument may be nil.
func SeedIndex(registry *domain.Collection, graph *domain.Graph) *Index {
	ix := NewIndex()
	if registry != nil {
		for _, rec := range registry.Items {
			ix.AddDocument(rec.String("path"), rec.String("slug"), rec.String("title"))
		}
	}
	if graph != nil {
		for _, n := range graph.Nodes {
			ix.AddDocument(n.Path, n.Slug, n.Title)
		}
	}
	return ix
}

// Add maps key to path. The first mapping of a key wins.
func (ix *Index) Add(key, path string) {
	key = strings.TrimSpace(key)
	if key == "" || path == "" {
		return
	}
	if _, ok := ix.paths[key]; ok {
		return
	}
	ix.keys = append(ix.keys, key)
	ix.paths[key] = path
}

// AddDocument registers a document under its path, slug and title.
func (ix *Index) AddDocument(path, slug, title string) {
	if path == "" {
		return
	}
	ix.Add(path, path)
	ix.Add(slug, path)
	ix.Add(title, path)
}

// Lookup returns the path mapped to key verbatim.
func (ix *Index) Lookup(key string) (string, bool) {
	path, ok := ix.paths[key]
	return path, ok
}

// Keys returns the index keys in insertion order.
func (ix *Index) Keys() []string {
	return ix.keys
}

// Len returns the number of keys.
func (ix *Index) Len() int {
	return len(ix.keys)
}
