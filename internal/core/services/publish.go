package services

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/core/ports/driving"
	"github.com/udigitrentals/github-kb/internal/logger"
)

// Ensure PublishService implements the interface.
var _ driving.PublishService = (*PublishService)(nil)

// DefaultCommitMessage is used when PublishOptions.Message is empty.
const DefaultCommitMessage = "Update knowledge base"

// PublishService loads the stored artifacts, composes new input into them
// and writes the result back to a content store.
type PublishService struct {
	composer    driving.ComposeService
	target      artifactStore
	source      artifactStore
	validator   driven.SchemaValidator
	history     driven.StatsHistoryStore
	parallelism int
}

// PublishOption configures a PublishService.
type PublishOption func(*PublishService)

// WithBasePath places every artifact under base inside the store.
func WithBasePath(base string) PublishOption {
	return func(s *PublishService) {
		s.target.base = base
		s.source.base = base
	}
}

// WithSource loads existing artifacts from a different store than the
// one written to.
func WithSource(store driven.ContentStore, base string) PublishOption {
	return func(s *PublishService) {
		s.source = artifactStore{store: store, base: base}
	}
}

// WithValidator checks every artifact against its schema before writing.
func WithValidator(v driven.SchemaValidator) PublishOption {
	return func(s *PublishService) {
		s.validator = v
	}
}

// WithHistory appends each published stats snapshot to h.
func WithHistory(h driven.StatsHistoryStore) PublishOption {
	return func(s *PublishService) {
		s.history = h
	}
}

// WithParallelism bounds concurrent writes on stores that allow them.
func WithParallelism(n int) PublishOption {
	return func(s *PublishService) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// NewPublishService creates a publish service writing to store.
func NewPublishService(composer driving.ComposeService, store driven.ContentStore, opts ...PublishOption) *PublishService {
	s := &PublishService{
		composer:    composer,
		target:      artifactStore{store: store},
		source:      artifactStore{store: store},
		parallelism: domain.DefaultPublishParallel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load reads the stored artifacts.
func (s *PublishService) Load(ctx context.Context) (*domain.ExistingState, error) {
	if s.source.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	snap, err := s.source.load(ctx)
	if err != nil {
		return nil, err
	}
	return &snap.Existing, nil
}

// Publish composes rawMarkdown against the stored artifacts and writes
// the result back. Schema findings are reported but never block the write.
func (s *PublishService) Publish(
	ctx context.Context,
	rawMarkdown string,
	opts driving.PublishOptions,
) (*driving.PublishReport, error) {
	if s.target.store == nil || s.source.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	logger.Section("Publish")

	// 1. Load what is stored now.
	existing, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load artifacts: %w", err)
	}

	// 2. Compose.
	result, err := s.composer.Compose(ctx, domain.ComposeInput{
		RawMarkdown: rawMarkdown,
		Existing:    *existing,
	})
	if err != nil {
		return nil, err
	}

	// 3. Serialise and validate.
	artifacts, err := EncodeArtifacts(result)
	if err != nil {
		return nil, err
	}
	result.Findings = append(result.Findings, s.validate(artifacts)...)

	report := &driving.PublishReport{Result: result, DryRun: opts.DryRun}
	if opts.DryRun {
		for _, a := range artifacts {
			logger.Info("dry run: would write %s (%d bytes)", s.target.path(a.Path), len(a.Data))
		}
		return report, nil
	}

	message := opts.Message
	if message == "" {
		message = DefaultCommitMessage
	}

	// 4. Write data files, then the manifest, then prune what the new
	// layout no longer uses.
	var data, manifests []Artifact
	for _, a := range artifacts {
		if a.Kind == kindManifest {
			manifests = append(manifests, a)
			continue
		}
		data = append(data, a)
	}
	for _, batch := range [][]Artifact{data, manifests} {
		written, err := s.writeAll(ctx, batch, message)
		if err != nil {
			return report, err
		}
		report.Written = append(report.Written, written...)
	}

	report.Deleted, err = s.prune(ctx, artifacts, message)
	if err != nil {
		return report, err
	}

	// 5. Record the snapshot.
	if s.history != nil {
		if err := s.history.Append(ctx, result.Stats); err != nil {
			logger.Warn("record stats history: %v", err)
		}
	}

	logger.Infow("published",
		"store", s.target.store.Name(),
		"written", len(report.Written),
		"deleted", len(report.Deleted),
		"findings", len(result.Findings))
	return report, nil
}

func (s *PublishService) validate(artifacts []Artifact) []domain.Finding {
	if s.validator == nil {
		return nil
	}
	var findings []domain.Finding
	for _, a := range artifacts {
		if a.Kind == kindManifest {
			continue
		}
		for _, f := range s.validator.Validate(a.Kind, a.Data) {
			f.Subject = a.Path + ": " + f.Subject
			logger.Warnw("schema", "file", a.Path, "message", f.Message)
			findings = append(findings, f)
		}
	}
	return findings
}

// writeAll writes artifacts whose stored content differs and returns the
// written paths in input order. Writes run concurrently only when the
// store allows it.
func (s *PublishService) writeAll(ctx context.Context, artifacts []Artifact, message string) ([]string, error) {
	limit := 1
	if cw, ok := s.target.store.(driven.ConcurrentWriter); ok && cw.SupportsConcurrentWrites() {
		limit = s.parallelism
	}

	changed := make([]bool, len(artifacts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, a := range artifacts {
		g.Go(func() error {
			ok, err := s.writeOne(ctx, a, message)
			changed[i] = ok
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var written []string
	for i, a := range artifacts {
		if changed[i] {
			written = append(written, s.target.path(a.Path))
		}
	}
	return written, nil
}

func (s *PublishService) writeOne(ctx context.Context, a Artifact, message string) (bool, error) {
	current, sha, err := s.target.read(ctx, a.Path)
	if err != nil {
		return false, err
	}
	if current != nil && bytes.Equal(current, a.Data) {
		logger.Debug("unchanged: %s", a.Path)
		return false, nil
	}
	if _, err := s.target.store.Write(ctx, s.target.path(a.Path), a.Data, sha, message); err != nil {
		return false, fmt.Errorf("write %s: %w", a.Path, err)
	}
	logger.Debug("wrote %s (%d bytes)", a.Path, len(a.Data))
	return true, nil
}

// prune deletes search files left over from a previous layout or a
// larger shard count.
func (s *PublishService) prune(ctx context.Context, artifacts []Artifact, message string) ([]string, error) {
	keep := make(map[string]struct{}, len(artifacts))
	for _, a := range artifacts {
		keep[a.Path] = struct{}{}
	}

	candidates := []string{SearchFile}
	listed, err := s.target.store.List(ctx, s.target.path(SearchDir))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", SearchDir, err)
	}
	for _, p := range listed {
		candidates = append(candidates, path.Join(SearchDir, path.Base(p)))
	}
	sort.Strings(candidates)

	var deleted []string
	for _, name := range candidates {
		if _, ok := keep[name]; ok || !ownedBySearchLayout(name) {
			continue
		}
		data, sha, err := s.target.read(ctx, name)
		if err != nil {
			return deleted, err
		}
		if data == nil {
			continue
		}
		if err := s.target.store.Delete(ctx, s.target.path(name), sha, message); err != nil {
			return deleted, fmt.Errorf("delete %s: %w", name, err)
		}
		deleted = append(deleted, s.target.path(name))
	}
	return deleted, nil
}
