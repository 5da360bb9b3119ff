// Package stats derives summary metrics from the merged collections.
package stats

import (
	"context"
	"strings"
	"time"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/roi"
)

// Ensure Processor implements the interface.
var _ driven.PostProcessor = (*Processor)(nil)

// Input is everything Compute reads.
type Input struct {
	Registry    []domain.Record
	SearchDocs  int
	Graph       *domain.Graph
	ROI         domain.ROIAggregate
	GeneratedAt time.Time
}

// Compute derives a stats snapshot. Degrees are counted only for nodes in
// the graph's node list; edges naming unknown paths add nothing.
func Compute(in Input) domain.Stats {
	s := domain.Stats{
		GeneratedAt:   in.GeneratedAt,
		RegistryItems: len(in.Registry),
		SearchDocs:    in.SearchDocs,
		Degrees:       map[int]int{},
		ROI:           in.ROI,
	}

	tags := make(map[string]struct{})
	for _, rec := range in.Registry {
		for _, tag := range rec.Strings("tags") {
			if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" {
				tags[tag] = struct{}{}
			}
		}
	}
	s.UniqueTags = len(tags)

	if in.Graph == nil {
		return s
	}
	s.GraphNodes = len(in.Graph.Nodes)
	s.GraphEdges = len(in.Graph.Edges)

	degree := NodeDegrees(in.Graph)
	for _, e := range in.Graph.Edges {
		if e.Status == domain.EdgePending {
			s.PendingEdges++
		}
	}
	for _, d := range degree {
		s.Degrees[d]++
		if d == 0 {
			s.Orphans++
		}
	}
	return s
}

// NodeDegrees returns the number of incident edges of every node, keyed by path.
func NodeDegrees(g *domain.Graph) map[string]int {
	degree := make(map[string]int, len(g.Nodes))
	for _, n := range g.Nodes {
		degree[n.Path] = 0
	}
	for _, e := range g.Edges {
		if _, ok := degree[e.Source]; ok {
			degree[e.Source]++
		}
		if _, ok := degree[e.Target]; ok {
			degree[e.Target]++
		}
	}
	return degree
}

// Processor computes result.Stats as a pipeline stage.
type Processor struct {
	now func() time.Time
}

// Option configures the processor.
type Option func(*Processor)

// WithClock sets the time source of GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) {
		if now != nil {
			p.now = now
		}
	}
}

// New creates a stats processor.
func New(opts ...Option) *Processor {
	p := &Processor{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "stats"
}

// Process fills result.Stats from the merged collections and ROI estimates.
func (p *Processor) Process(_ context.Context, result *domain.ComposeResult) error {
	var registry []domain.Record
	if result.Registry != nil {
		registry = result.Registry.Items
	}
	searchDocs := result.Search.Len()
	if result.SearchManifest != nil {
		searchDocs = result.SearchManifest.Total
	}

	result.Stats = Compute(Input{
		Registry:    registry,
		SearchDocs:  searchDocs,
		Graph:       result.Cross,
		ROI:         roi.Aggregate(result.ROI),
		GeneratedAt: p.now().UTC(),
	})
	return nil
}
