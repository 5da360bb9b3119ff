package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/core/ports/driving"
	"github.com/udigitrentals/github-kb/internal/crosslinks"
	"github.com/udigitrentals/github-kb/internal/identity"
	"github.com/udigitrentals/github-kb/internal/logger"
	"github.com/udigitrentals/github-kb/internal/merge"
	"github.com/udigitrentals/github-kb/internal/normalisers/markdown"
	"github.com/udigitrentals/github-kb/internal/roi"
)

// Ensure ComposeService implements the interface.
var _ driving.ComposeService = (*ComposeService)(nil)

// ComposeService runs the ingestion pipeline: segment, normalise, resolve
// links, merge, then the post-processing stages.
type ComposeService struct {
	normaliser driven.Normaliser
	matcher    crosslinks.Matcher
	pipeline   driven.PostProcessorPipeline
}

// NewComposeService creates a new compose service.
// matcher and pipeline are optional: a nil matcher selects substring
// matching and a nil pipeline skips stats, lint and sharding.
func NewComposeService(
	normaliser driven.Normaliser,
	matcher crosslinks.Matcher,
	pipeline driven.PostProcessorPipeline,
) *ComposeService {
	if matcher == nil {
		matcher = crosslinks.SubstringMatcher{}
	}
	return &ComposeService{
		normaliser: normaliser,
		matcher:    matcher,
		pipeline:   pipeline,
	}
}

// Compose merges the blocks of input.RawMarkdown into input.Existing.
// Blocks are processed strictly in source order because each block can
// resolve links against the blocks before it.
func (s *ComposeService) Compose(ctx context.Context, input domain.ComposeInput) (*domain.ComposeResult, error) {
	registryIn := input.Existing.Registry
	if registryIn == nil {
		registryIn = domain.NewCollection(domain.Bare())
	}
	searchIn := input.Existing.Search
	if searchIn == nil {
		searchIn = domain.NewCollection(domain.Bare())
	}

	// 1. Per-run state, seeded from what already exists
	slugs := identity.NewSlugAllocator()
	for _, rec := range registryIn.Items {
		slugs.Reserve(rec.String("slug"), rec.ID())
	}
	resolver := crosslinks.NewResolver(crosslinks.SeedIndex(registryIn, input.Existing.Cross), s.matcher)
	registry := merge.NewRecords(registryIn)
	search := merge.NewRecords(searchIn)
	graph := merge.NewGraph(input.Existing.Cross)

	// 2. Blocks in source order
	blocks := markdown.Segment(input.RawMarkdown)
	estimates := make([]domain.ROIEstimate, 0, len(blocks))
	for _, block := range blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(block.Raw) == "" {
			continue
		}

		res, err := s.normaliser.Normalise(ctx, block)
		if err != nil {
			return nil, fmt.Errorf("normalise block %d: %w", block.Number, err)
		}
		if res.DegradedID {
			logger.Warn("block %d (%s) has a degraded identifier %s", block.Number, block.Header, res.Registry.ID)
		}

		// Slug uniqueness is settled before anything is recorded so that
		// path, node and registry entry agree.
		if slug := slugs.Allocate(res.Registry.Slug, res.Registry.ID); slug != res.Registry.Slug {
			logger.Debug("slug %s taken, block %d uses %s", res.Registry.Slug, block.Number, slug)
			res.SetSlug(slug, identity.PathForSlug(slug))
		}

		node := domain.Node{
			ID:    res.Registry.ID,
			Path:  res.Registry.Path,
			Title: res.Registry.Title,
			Slug:  res.Registry.Slug,
		}
		edges := resolver.Resolve(node.Path, crosslinks.CollectTargets(block.Raw, res.Data.CrossLinks))
		resolver.Register(node)
		graph.AddNodes(node)
		graph.AddEdges(edges...)

		if err := upsertTyped(registry, res.Registry); err != nil {
			return nil, err
		}
		if err := upsertTyped(search, res.Search); err != nil {
			return nil, err
		}

		estimates = append(estimates, roi.Parse(res.Data.ROIText))
	}

	if roi.MixedRates(estimates) {
		logger.Warn("ROI rates differ between blocks; the aggregate reports %.0f/h", domain.DefaultRateUSD)
	}

	result := &domain.ComposeResult{
		Registry: registryIn.WithItems(registry.Items()),
		Search:   searchIn.WithItems(search.Items()),
		Cross:    graph.Graph(),
		ROI:      estimates,
	}

	// 3. Post-processing
	if s.pipeline != nil {
		if err := s.pipeline.Process(ctx, result); err != nil {
			return nil, fmt.Errorf("post-process: %w", err)
		}
	}

	logger.Info("composed %d blocks: %d registry entries, %d edges",
		len(estimates), result.Registry.Len(), len(result.Cross.Edges))
	return result, nil
}

func upsertTyped(records *merge.Records, v any) error {
	rec, err := domain.ToRecord(v)
	if err != nil {
		return err
	}
	records.Upsert(rec)
	return nil
}
