// Package gitrepo stores artifacts in a local git repository, one commit
// per write. It is the offline counterpart of the GitHub store.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/logger"
)

// Ensure Store implements the interfaces.
var (
	_ driven.ContentStore     = (*Store)(nil)
	_ driven.ConcurrentWriter = (*Store)(nil)
)

// Default commit author.
const (
	DefaultAuthorName  = "kb"
	DefaultAuthorEmail = "kb@localhost"
)

// Store is a driven.ContentStore over a git working tree. Reads come from
// the branch head; SHAs are git blob hashes, as on GitHub.
type Store struct {
	mu     sync.Mutex
	repo   *git.Repository
	root   string
	branch plumbing.ReferenceName
	author object.Signature
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithAuthor sets the commit author.
func WithAuthor(name, email string) Option {
	return func(s *Store) {
		s.author.Name = name
		s.author.Email = email
	}
}

// WithClock sets the commit timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// Open opens the repository at root, initialising it if needed, and
// checks out branch.
func Open(root, branch string, opts ...Option) (*Store, error) {
	if branch == "" {
		branch = domain.DefaultBranch
	}

	repo, err := git.PlainOpen(root)
	if errors.Is(err, git.ErrRepositoryNotExists) {
		if err := os.MkdirAll(root, 0o755); err != nil {
			return nil, fmt.Errorf("create repo dir: %w", err)
		}
		repo, err = git.PlainInit(root, false)
	}
	if err != nil {
		return nil, fmt.Errorf("open repo %s: %w", root, err)
	}

	s := &Store{
		repo:   repo,
		root:   root,
		branch: plumbing.NewBranchReferenceName(branch),
		author: object.Signature{Name: DefaultAuthorName, Email: DefaultAuthorEmail},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.checkoutBranch(); err != nil {
		return nil, err
	}
	return s, nil
}

// Name identifies the backend.
func (s *Store) Name() string {
	return "git:" + s.root + "@" + s.branch.Short()
}

// SupportsConcurrentWrites reports false; commits are linear on one branch.
func (s *Store) SupportsConcurrentWrites() bool {
	return false
}

// Read returns the committed content of p and its blob hash.
func (s *Store) Read(ctx context.Context, p string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := s.headFile(p)
	if err != nil {
		return nil, "", err
	}
	reader, err := file.Reader()
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", p, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", p, err)
	}
	return data, file.Hash.String(), nil
}

// Write commits data at p. Content identical to the head is not
// committed again.
func (s *Store) Write(ctx context.Context, p string, data []byte, sha, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rel := repoPath(p)
	current, err := s.currentHash(rel)
	if err != nil {
		return "", err
	}
	if err := checkSHA(current, sha); err != nil {
		return "", fmt.Errorf("%s: %w", p, err)
	}

	next := plumbing.ComputeHash(plumbing.BlobObject, data).String()
	if next == current {
		return next, nil
	}

	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create dir for %s: %w", p, err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}

	worktree, err := s.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("open worktree: %w", err)
	}
	if _, err := worktree.Add(rel); err != nil {
		return "", fmt.Errorf("git add %s: %w", p, err)
	}
	if err := s.commit(worktree, message); err != nil {
		return "", err
	}
	return next, nil
}

// Delete commits the removal of p. A missing file is not an error.
func (s *Store) Delete(ctx context.Context, p, sha, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rel := repoPath(p)
	current, err := s.currentHash(rel)
	if err != nil || current == "" {
		return err
	}
	if sha != "" && sha != current {
		return fmt.Errorf("%s: %w: sha mismatch", p, domain.ErrConflict)
	}

	worktree, err := s.repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	if _, err := worktree.Remove(rel); err != nil {
		return fmt.Errorf("git rm %s: %w", p, err)
	}
	return s.commit(worktree, message)
}

// List returns the committed files directly under dir, sorted.
func (s *Store) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []string{}
	commit, err := s.headCommit()
	if errors.Is(err, domain.ErrNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("load tree: %w", err)
	}

	rel := repoPath(dir)
	if rel != "" {
		tree, err = tree.Tree(rel)
		if errors.Is(err, object.ErrDirectoryNotFound) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("load tree %s: %w", dir, err)
		}
	}

	for _, entry := range tree.Entries {
		if entry.Mode.IsFile() {
			out = append(out, path.Join(rel, entry.Name))
		}
	}
	sort.Strings(out)
	return out, nil
}

func (s *Store) commit(worktree *git.Worktree, message string) error {
	author := s.author
	author.When = s.now()
	hash, err := worktree.Commit(message, &git.CommitOptions{Author: &author})
	if errors.Is(err, git.ErrEmptyCommit) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	logger.Debug("git: committed %s %q", hash.String()[:7], message)
	return nil
}

// headCommit returns the branch head, or domain.ErrNotFound before the
// first commit.
func (s *Store) headCommit() (*object.Commit, error) {
	ref, err := s.repo.Reference(s.branch, true)
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, fmt.Errorf("branch %s: %w", s.branch.Short(), domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve branch %s: %w", s.branch.Short(), err)
	}
	commit, err := s.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, fmt.Errorf("load commit object: %w", err)
	}
	return commit, nil
}

func (s *Store) headFile(p string) (*object.File, error) {
	commit, err := s.headCommit()
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", p, domain.ErrNotFound)
		}
		return nil, err
	}
	file, err := commit.File(repoPath(p))
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, fmt.Errorf("%s: %w", p, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", p, err)
	}
	if file.Mode != filemode.Regular && file.Mode != filemode.Executable {
		return nil, fmt.Errorf("%w: %s is not a regular file", domain.ErrInvalidInput, p)
	}
	return file, nil
}

// currentHash returns the committed blob hash of rel, or "" when absent.
func (s *Store) currentHash(rel string) (string, error) {
	file, err := s.headFile(rel)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return file.Hash.String(), nil
}

// checkoutBranch points HEAD at the configured branch, creating it from
// the current head when missing. An unborn repository only moves HEAD.
func (s *Store) checkoutBranch() error {
	head, err := s.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		ref := plumbing.NewSymbolicReference(plumbing.HEAD, s.branch)
		if err := s.repo.Storer.SetReference(ref); err != nil {
			return fmt.Errorf("set HEAD to %s: %w", s.branch.Short(), err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve HEAD: %w", err)
	}
	if head.Name() == s.branch {
		return nil
	}

	worktree, err := s.repo.Worktree()
	if err != nil {
		return fmt.Errorf("open worktree: %w", err)
	}
	_, err = s.repo.Reference(s.branch, true)
	create := errors.Is(err, plumbing.ErrReferenceNotFound)
	if err != nil && !create {
		return fmt.Errorf("resolve branch %s: %w", s.branch.Short(), err)
	}
	if err := worktree.Checkout(&git.CheckoutOptions{Branch: s.branch, Create: create, Keep: true}); err != nil {
		return fmt.Errorf("checkout branch %s: %w", s.branch.Short(), err)
	}
	return nil
}

func checkSHA(current, sha string) error {
	switch {
	case current == "" && sha == "":
		return nil
	case current == "":
		return fmt.Errorf("%w: file no longer exists", domain.ErrConflict)
	case sha != current:
		return fmt.Errorf("%w: sha mismatch", domain.ErrConflict)
	}
	return nil
}

// repoPath normalises p to a slash-separated path relative to the root.
func repoPath(p string) string {
	rel := strings.TrimPrefix(path.Clean("/"+filepath.ToSlash(p)), "/")
	return rel
}
