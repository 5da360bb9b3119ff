package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"sort"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/logger"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// Ensure Store implements the interfaces.
var (
	_ driven.ContentStore     = (*Store)(nil)
	_ driven.ConcurrentWriter = (*Store)(nil)
)

// Store is a driven.ContentStore over the GitHub contents API. Every
// write or delete is a commit on Branch; SHAs are git blob SHAs.
type Store struct {
	gh          *gh.Client
	owner       string
	repo        string
	branch      string
	rateLimiter *RateLimiter
}

// Option configures a Store.
type Option func(*Store) error

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(raw string) Option {
	return func(s *Store) error {
		if !strings.HasSuffix(raw, "/") {
			raw += "/"
		}
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%w: base url: %v", domain.ErrInvalidInput, err)
		}
		s.gh.BaseURL = u
		return nil
	}
}

// WithRateLimiter replaces the default rate limiter.
func WithRateLimiter(r *RateLimiter) Option {
	return func(s *Store) error {
		s.rateLimiter = r
		return nil
	}
}

// NewStore creates a store for owner/repo on branch, authenticating with
// a static token.
func NewStore(ctx context.Context, token, owner, repo, branch string, opts ...Option) (*Store, error) {
	if token == "" {
		return nil, fmt.Errorf("github: %w", domain.ErrAuthRequired)
	}
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("%w: github owner and repo are required", domain.ErrInvalidInput)
	}
	if branch == "" {
		branch = domain.DefaultBranch
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)
	tc.Timeout = DefaultTimeout

	s := &Store{
		gh:          gh.NewClient(tc),
		owner:       owner,
		repo:        repo,
		branch:      branch,
		rateLimiter: NewRateLimiter(0),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Name identifies the backend.
func (s *Store) Name() string {
	return fmt.Sprintf("github:%s/%s@%s", s.owner, s.repo, s.branch)
}

// SupportsConcurrentWrites reports false: each write moves the branch
// head, so parallel writes race and fail with 409.
func (s *Store) SupportsConcurrentWrites() bool {
	return false
}

// Read fetches a file and its blob SHA. Files over 1 MB come back without
// inline content and are fetched as raw blobs.
func (s *Store) Read(ctx context.Context, p string) ([]byte, string, error) {
	file, _, err := s.contents(ctx, p)
	if err != nil {
		return nil, "", err
	}
	if file == nil {
		return nil, "", fmt.Errorf("%w: %s is a directory", domain.ErrInvalidInput, p)
	}

	sha := file.GetSHA()
	if file.GetEncoding() == "none" {
		if err := s.rateLimiter.Wait(ctx); err != nil {
			return nil, "", fmt.Errorf("rate limit wait: %w", err)
		}
		data, resp, err := s.gh.Git.GetBlobRaw(ctx, s.owner, s.repo, sha)
		s.updateRateLimitFromResponse(resp)
		if err != nil {
			return nil, "", s.wrapError(err, "get blob "+p)
		}
		return data, sha, nil
	}

	content, err := file.GetContent()
	if err != nil {
		return nil, "", fmt.Errorf("decode %s: %w", p, err)
	}
	return []byte(content), sha, nil
}

// Write creates or updates a file in one commit.
func (s *Store) Write(ctx context.Context, p string, data []byte, sha, message string) (string, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(message),
		Content: data,
		Branch:  gh.Ptr(s.branch),
	}

	var (
		res  *gh.RepositoryContentResponse
		resp *gh.Response
		err  error
	)
	if sha == "" {
		res, resp, err = s.gh.Repositories.CreateFile(ctx, s.owner, s.repo, repoPath(p), opts)
	} else {
		opts.SHA = gh.Ptr(sha)
		res, resp, err = s.gh.Repositories.UpdateFile(ctx, s.owner, s.repo, repoPath(p), opts)
	}
	s.updateRateLimitFromResponse(resp)
	if err != nil {
		// Creating over an existing file is rejected with 422 because no
		// sha was supplied.
		if sha == "" && statusCode(err) == http.StatusUnprocessableEntity {
			return "", fmt.Errorf("write %s: %w: file already exists", p, domain.ErrConflict)
		}
		return "", s.wrapError(err, "write "+p)
	}

	logger.Debug("github: committed %s", p)
	return res.GetContent().GetSHA(), nil
}

// Delete removes a file in one commit. A missing file is not an error.
func (s *Store) Delete(ctx context.Context, p, sha, message string) error {
	if sha == "" {
		_, current, err := s.Read(ctx, p)
		if errors.Is(err, domain.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		sha = current
	}

	if err := s.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}
	_, resp, err := s.gh.Repositories.DeleteFile(ctx, s.owner, s.repo, repoPath(p), &gh.RepositoryContentFileOptions{
		Message: gh.Ptr(message),
		SHA:     gh.Ptr(sha),
		Branch:  gh.Ptr(s.branch),
	})
	s.updateRateLimitFromResponse(resp)
	if err != nil {
		if IsNotFound(s.wrapError(err, "")) {
			return nil
		}
		return s.wrapError(err, "delete "+p)
	}
	return nil
}

// List returns the files directly under dir, sorted.
func (s *Store) List(ctx context.Context, dir string) ([]string, error) {
	_, entries, err := s.contents(ctx, dir)
	if errors.Is(err, domain.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := []string{}
	for _, e := range entries {
		if e.GetType() == "file" {
			out = append(out, e.GetPath())
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) contents(ctx context.Context, p string) (*gh.RepositoryContent, []*gh.RepositoryContent, error) {
	if err := s.rateLimiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limit wait: %w", err)
	}

	opts := &gh.RepositoryContentGetOptions{Ref: s.branch}
	file, dir, resp, err := s.gh.Repositories.GetContents(ctx, s.owner, s.repo, repoPath(p), opts)
	s.updateRateLimitFromResponse(resp)
	if err != nil {
		return nil, nil, s.wrapError(err, "get contents "+p)
	}
	return file, dir, nil
}

// updateRateLimitFromResponse updates the rate limiter from GitHub response headers.
func (s *Store) updateRateLimitFromResponse(resp *gh.Response) {
	if resp == nil || resp.Response == nil {
		return
	}
	s.rateLimiter.UpdateFromResponse(resp.Response)
}

// wrapError converts go-github errors to our error types.
func (s *Store) wrapError(err error, operation string) error {
	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{
			ResetAt:   rateLimitErr.Rate.Reset.Time,
			Remaining: rateLimitErr.Rate.Remaining,
			Limit:     rateLimitErr.Rate.Limit,
		}
	}
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &RateLimitError{
			ResetAt:   time.Now().Add(abuseErr.GetRetryAfter()),
			Remaining: s.rateLimiter.Remaining(),
			Limit:     s.rateLimiter.Limit(),
		}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		apiErr := &APIError{
			StatusCode: ghErr.Response.StatusCode,
			Message:    ghErr.Message,
		}
		if ghErr.Response.Request != nil {
			apiErr.URL = ghErr.Response.Request.URL.String()
		}
		return apiErr
	}

	return fmt.Errorf("%s: %w", operation, err)
}

func statusCode(err error) int {
	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return ghErr.Response.StatusCode
	}
	return 0
}

// repoPath strips the leading slash the contents API rejects.
func repoPath(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}
