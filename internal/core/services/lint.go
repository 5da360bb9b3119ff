package services

import (
	"context"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/core/ports/driving"
	"github.com/udigitrentals/github-kb/internal/postprocessors/lint"
)

// Ensure LintService implements the interface.
var _ driving.LintService = (*LintService)(nil)

// LintService checks artifacts already in a content store.
type LintService struct {
	artifacts artifactStore
	validator driven.SchemaValidator
	minLinks  int
}

// NewLintService creates a lint service reading from store under base.
// validator is optional.
func NewLintService(store driven.ContentStore, base string, validator driven.SchemaValidator, minLinks int) *LintService {
	return &LintService{
		artifacts: artifactStore{store: store, base: base},
		validator: validator,
		minLinks:  minLinks,
	}
}

// Lint returns schema findings for each stored file followed by the
// content checks.
func (s *LintService) Lint(ctx context.Context) ([]domain.Finding, error) {
	if s.artifacts.store == nil {
		return nil, domain.ErrStoreUnavailable
	}
	snap, err := s.artifacts.load(ctx)
	if err != nil {
		return nil, err
	}

	findings := []domain.Finding{}
	if s.validator != nil {
		for _, f := range snap.Files {
			for _, finding := range s.validator.Validate(f.Kind, f.Data) {
				finding.Subject = f.Path + ": " + finding.Subject
				findings = append(findings, finding)
			}
		}
	}

	findings = append(findings, lint.Run(lint.Input{
		Registry:  snap.Existing.Registry.Items,
		SearchIDs: lint.SearchIDs(snap.Existing.Search, nil),
		Graph:     snap.Existing.Cross,
		MinLinks:  s.minLinks,
	})...)
	return findings, nil
}
