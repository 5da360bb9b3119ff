// Package shard splits the search corpus into bounded-size files when it
// grows beyond a single payload.
package shard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/logger"
)

// Ensure Planner implements the interface.
var _ driven.PostProcessor = (*Planner)(nil)

// Default sizes, measured as serialised JSON bytes.
const (
	DefaultTargetSize = 3 << 20
	DefaultSoftCap    = 5 << 20
)

// ManifestFile is the name of the manifest written next to the shards.
const ManifestFile = "manifest.json"

// FileName returns the deterministic file name of the n-th shard (1-based).
func FileName(n int) string {
	return fmt.Sprintf("search-%d.json", n)
}

// Planner packs search documents into shards.
type Planner struct {
	target  int
	softCap int
}

// Option configures the planner.
type Option func(*Planner)

// WithTargetSize sets the size a shard should not grow beyond.
func WithTargetSize(size int) Option {
	return func(p *Planner) {
		if size > 0 {
			p.target = size
		}
	}
}

// WithSoftCap sets the size up to which the corpus stays a single payload.
func WithSoftCap(size int) Option {
	return func(p *Planner) {
		if size > 0 {
			p.softCap = size
		}
	}
}

// New creates a new planner with the given options.
func New(opts ...Option) *Planner {
	p := &Planner{
		target:  DefaultTargetSize,
		softCap: DefaultSoftCap,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Planner) Name() string {
	return "shard"
}

// Target returns the target shard size.
func (p *Planner) Target() int { return p.target }

// SoftCap returns the single-payload limit.
func (p *Planner) SoftCap() int { return p.softCap }

// Plan is the outcome of planning one corpus.
type Plan struct {
	// Single is true when the corpus fits in one payload.
	Single bool

	// Size is the serialised size of the whole corpus.
	Size int

	Manifest *domain.ShardManifest
	Shards   []domain.Shard
}

// Plan decides between a single payload and shards. Shards are packed
// greedily in order: a document joins the current shard while the
// shard's serialised size stays at or below the target. A document that
// alone exceeds the target gets a shard of its own.
func (p *Planner) Plan(items []domain.Record) (*Plan, error) {
	encoded := make([][]byte, len(items))
	total := 2
	for i, item := range items {
		data, err := json.Marshal(item)
		if err != nil {
			return nil, fmt.Errorf("encode search document %d: %w", i, err)
		}
		encoded[i] = data
		total += len(data)
		if i > 0 {
			total++
		}
	}

	if total <= p.softCap {
		return &Plan{Single: true, Size: total}, nil
	}

	plan := &Plan{Size: total, Manifest: &domain.ShardManifest{Total: len(items)}}
	var current []domain.Record
	size := 2
	flush := func() {
		file := FileName(len(plan.Shards) + 1)
		plan.Shards = append(plan.Shards, domain.Shard{File: file, Items: current, Size: size})
		plan.Manifest.Shards = append(plan.Manifest.Shards, domain.ShardRef{File: file, Count: len(current)})
		current, size = nil, 2
	}

	for i, item := range items {
		grown := size + len(encoded[i])
		if len(current) > 0 {
			grown++
		}
		if len(current) > 0 && grown > p.target {
			flush()
			grown = size + len(encoded[i])
		}
		current = append(current, item)
		size = grown
	}
	if len(current) > 0 {
		flush()
	}
	return plan, nil
}

// Process replaces result.Search with a manifest and shards when the
// corpus exceeds the soft cap.
func (p *Planner) Process(_ context.Context, result *domain.ComposeResult) error {
	if result.Search == nil {
		return nil
	}

	plan, err := p.Plan(result.Search.Items)
	if err != nil {
		return err
	}
	if plan.Single {
		logger.Debug("search corpus is %s, single payload", humanize.IBytes(uint64(plan.Size)))
		return nil
	}

	logger.Info("search corpus is %s, split into %d shards of at most %s",
		humanize.IBytes(uint64(plan.Size)), len(plan.Shards), humanize.IBytes(uint64(p.target)))
	result.SearchManifest = plan.Manifest
	result.SearchShards = plan.Shards
	result.Search = nil
	return nil
}
