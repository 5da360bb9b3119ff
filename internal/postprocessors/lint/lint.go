// Package lint reports quality findings on composed output. Findings are
// advisory and never stop output from being written.
package lint

import (
	"context"
	"fmt"
	"sort"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/logger"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Check names.
const (
	CheckPendingRef    = "pending-ref"
	CheckOrphan        = "orphan"
	CheckDuplicateSlug = "duplicate-slug"
	CheckMinLinks      = "min-links"
	CheckMissingSearch = "missing-search-doc"
)

// Input is the output set to lint.
type Input struct {
	Registry []domain.Record

	// SearchIDs holds the identifiers of every search document, or nil to
	// skip the missing-search-doc check.
	SearchIDs map[string]struct{}

	Graph *domain.Graph

	// MinLinks is the minimum number of outgoing links per document.
	// Zero disables the check.
	MinLinks int
}

// Run executes every check and returns the findings sorted by check, then subject.
func Run(in Input) []domain.Finding {
	var findings []domain.Finding
	findings = append(findings, duplicateSlugs(in.Registry)...)
	findings = append(findings, missingSearchDocs(in.Registry, in.SearchIDs)...)
	if in.Graph != nil {
		findings = append(findings, pendingRefs(in.Graph)...)
		findings = append(findings, orphans(in.Graph)...)
		if in.MinLinks > 0 {
			findings = append(findings, minLinks(in.Graph, in.MinLinks)...)
		}
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Check != findings[j].Check {
			return findings[i].Check < findings[j].Check
		}
		return findings[i].Subject < findings[j].Subject
	})
	return findings
}

func duplicateSlugs(registry []domain.Record) []domain.Finding {
	ids := make(map[string][]string)
	var order []string
	for _, rec := range registry {
		slug := rec.String("slug")
		if slug == "" {
			continue
		}
		if _, ok := ids[slug]; !ok {
			order = append(order, slug)
		}
		ids[slug] = append(ids[slug], rec.ID())
	}

	var findings []domain.Finding
	for _, slug := range order {
		if n := len(ids[slug]); n > 1 {
			findings = append(findings, domain.Finding{
				Check:    CheckDuplicateSlug,
				Severity: domain.SeverityError,
				Subject:  slug,
				Message:  fmt.Sprintf("slug used by %d entries: %v", n, ids[slug]),
			})
		}
	}
	return findings
}

func missingSearchDocs(registry []domain.Record, searchIDs map[string]struct{}) []domain.Finding {
	if searchIDs == nil {
		return nil
	}
	var findings []domain.Finding
	for _, rec := range registry {
		id := rec.ID()
		if id == "" {
			continue
		}
		if _, ok := searchIDs[id]; !ok {
			findings = append(findings, domain.Finding{
				Check:    CheckMissingSearch,
				Severity: domain.SeverityError,
				Subject:  rec.String("path"),
				Message:  "registry entry " + id + " has no search document",
			})
		}
	}
	return findings
}

func pendingRefs(g *domain.Graph) []domain.Finding {
	var findings []domain.Finding
	for _, e := range g.Edges {
		if e.Status != domain.EdgePending {
			continue
		}
		findings = append(findings, domain.Finding{
			Check:    CheckPendingRef,
			Severity: domain.SeverityWarning,
			Subject:  e.Source,
			Message:  fmt.Sprintf("unresolved ref %s -> %q", e.Source, e.Target),
		})
	}
	return findings
}

func orphans(g *domain.Graph) []domain.Finding {
	inbound := make(map[string]int, len(g.Nodes))
	for _, e := range g.Edges {
		if e.Status == domain.EdgeOK && e.Source != e.Target {
			inbound[e.Target]++
		}
	}

	var findings []domain.Finding
	for _, n := range g.Nodes {
		if inbound[n.Path] == 0 {
			findings = append(findings, domain.Finding{
				Check:    CheckOrphan,
				Severity: domain.SeverityWarning,
				Subject:  n.Path,
				Message:  "no other document links here",
			})
		}
	}
	return findings
}

func minLinks(g *domain.Graph, want int) []domain.Finding {
	outbound := make(map[string]int, len(g.Nodes))
	for _, e := range g.Edges {
		outbound[e.Source]++
	}

	var findings []domain.Finding
	for _, n := range g.Nodes {
		if out := outbound[n.Path]; out < want {
			findings = append(findings, domain.Finding{
				Check:    CheckMinLinks,
				Severity: domain.SeverityWarning,
				Subject:  n.Path,
				Message:  fmt.Sprintf("%d outgoing links, want at least %d", out, want),
			})
		}
	}
	return findings
}

// SearchIDs collects the identifiers of a search collection and its shards.
func SearchIDs(search *domain.Collection, shards []domain.Shard) map[string]struct{} {
	ids := make(map[string]struct{})
	if search != nil {
		for _, rec := range search.Items {
			ids[rec.ID()] = struct{}{}
		}
	}
	for _, s := range shards {
		for _, rec := range s.Items {
			ids[rec.ID()] = struct{}{}
		}
	}
	return ids
}

// Processor runs the checks as a pipeline stage and appends the findings
// to the result.
type Processor struct {
	minLinks int
}

// Option configures the processor.
type Option func(*Processor)

// WithMinLinks enables the outgoing-link check.
func WithMinLinks(n int) Option {
	return func(p *Processor) {
		if n >= 0 {
			p.minLinks = n
		}
	}
}

// New creates a lint processor.
func New(opts ...Option) *Processor {
	p := &Processor{}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "lint"
}

// Process lints the result and logs each finding at warn level.
func (p *Processor) Process(_ context.Context, result *domain.ComposeResult) error {
	var registry []domain.Record
	if result.Registry != nil {
		registry = result.Registry.Items
	}

	findings := Run(Input{
		Registry:  registry,
		SearchIDs: SearchIDs(result.Search, result.SearchShards),
		Graph:     result.Cross,
		MinLinks:  p.minLinks,
	})
	for _, f := range findings {
		logger.Warnw("lint", "check", f.Check, "subject", f.Subject, "message", f.Message)
	}
	result.Findings = append(result.Findings, findings...)
	return nil
}
