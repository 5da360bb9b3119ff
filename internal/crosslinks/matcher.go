package crosslinks

import (
	"fmt"
	"sort"
	"strings"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/identity"
)

// Matcher strategy names.
const (
	StrategySubstring = "substring"
	StrategyTitle     = "title"
)

// Matcher resolves a raw target against the index.
type Matcher interface {
	// Name returns the strategy name used in configuration.
	Name() string

	// Match returns the canonical path for target, if any.
	Match(ix *Index, target string) (string, bool)
}

// MatcherBuilder creates a Matcher.
type MatcherBuilder func() Matcher

var matchers = map[string]MatcherBuilder{
	StrategySubstring: func() Matcher { return SubstringMatcher{} },
	StrategyTitle:     func() Matcher { return TitleMatcher{} },
}

// NewMatcher returns the matcher registered under name.
// An empty name selects the substring strategy.
func NewMatcher(name string) (Matcher, error) {
	if name == "" {
		name = StrategySubstring
	}
	build, ok := matchers[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: link strategy %q", domain.ErrUnsupportedType, name)
	}
	return build(), nil
}

// MatcherNames returns the registered strategy names, sorted.
func MatcherNames() []string {
	names := make([]string, 0, len(matchers))
	for name := range matchers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SubstringMatcher tries an exact key first, then accepts the first key
// (in index order) that contains the target, ignoring case.
type SubstringMatcher struct{}

func (SubstringMatcher) Name() string { return StrategySubstring }

func (SubstringMatcher) Match(ix *Index, target string) (string, bool) {
	if path, ok := ix.Lookup(target); ok {
		return path, true
	}
	needle := strings.ToLower(strings.TrimSpace(target))
	if needle == "" {
		return "", false
	}
	for _, key := range ix.Keys() {
		if strings.Contains(strings.ToLower(key), needle) {
			path, _ := ix.Lookup(key)
			return path, true
		}
	}
	return "", false
}

// TitleMatcher tries an exact key first, then accepts a key whose slug
// form equals the slug form of the target.
type TitleMatcher struct{}

func (TitleMatcher) Name() string { return StrategyTitle }

func (TitleMatcher) Match(ix *Index, target string) (string, bool) {
	if path, ok := ix.Lookup(target); ok {
		return path, true
	}
	want := identity.Slugify(target)
	if want == "" {
		return "", false
	}
	for _, key := range ix.Keys() {
		if identity.Slugify(key) == want {
			path, _ := ix.Lookup(key)
			return path, true
		}
	}
	return "", false
}
