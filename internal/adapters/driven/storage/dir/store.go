// Package dir stores artifacts as plain files under a root directory.
package dir

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
)

// Ensure Store implements the interfaces.
var (
	_ driven.ContentStore     = (*Store)(nil)
	_ driven.ConcurrentWriter = (*Store)(nil)
)

// Store is a driven.ContentStore over a local directory. The SHA of a
// file is the hex SHA-256 of its content. Writes go through a temp file
// and rename so readers never see a partial file.
type Store struct {
	root string

	// mu serialises the check-then-write on a single path.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// New creates a store rooted at root. The directory is created on first write.
func New(root string) *Store {
	return &Store{root: root, locks: make(map[string]*sync.Mutex)}
}

// Name identifies the backend.
func (s *Store) Name() string {
	return "dir:" + s.root
}

// Root returns the root directory.
func (s *Store) Root() string {
	return s.root
}

// SupportsConcurrentWrites reports true; distinct paths never contend.
func (s *Store) SupportsConcurrentWrites() bool {
	return true
}

// Read returns the file at p and its SHA.
func (s *Store) Read(ctx context.Context, p string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	full, err := s.resolve(p)
	if err != nil {
		return nil, "", err
	}
	data, err := os.ReadFile(full)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", fmt.Errorf("%s: %w", p, domain.ErrNotFound)
	}
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", p, err)
	}
	return data, contentSHA(data), nil
}

// Write replaces the file at p if sha matches its current content.
func (s *Store) Write(ctx context.Context, p string, data []byte, sha, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := s.resolve(p)
	if err != nil {
		return "", err
	}

	unlock := s.lock(full)
	defer unlock()

	if err := checkSHA(full, sha); err != nil {
		return "", fmt.Errorf("%s: %w", p, err)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("create dir for %s: %w", p, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(full), "."+filepath.Base(full)+".*")
	if err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	if err := os.Rename(tmp.Name(), full); err != nil {
		return "", fmt.Errorf("write %s: %w", p, err)
	}
	return contentSHA(data), nil
}

// Delete removes the file at p. A missing file is not an error.
func (s *Store) Delete(ctx context.Context, p, sha, _ string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(p)
	if err != nil {
		return err
	}

	unlock := s.lock(full)
	defer unlock()

	if _, err := os.Stat(full); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := checkSHA(full, sha); err != nil {
		return fmt.Errorf("%s: %w", p, err)
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", p, err)
	}
	return nil
}

// List returns the regular files directly under dir, sorted, as
// slash-separated paths relative to the root.
func (s *Store) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	full, err := s.resolve(dir)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(full)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}

	out := []string{}
	for _, e := range entries {
		if e.Type().IsRegular() && !strings.HasPrefix(e.Name(), ".") {
			out = append(out, path.Join(cleanRel(dir), e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// resolve maps a store path to a file path, refusing paths that escape root.
func (s *Store) resolve(p string) (string, error) {
	rel := cleanRel(p)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", fmt.Errorf("%w: path %q escapes store root", domain.ErrInvalidInput, p)
	}
	return filepath.Join(s.root, filepath.FromSlash(rel)), nil
}

func (s *Store) lock(full string) func() {
	s.mu.Lock()
	l, ok := s.locks[full]
	if !ok {
		l = &sync.Mutex{}
		s.locks[full] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func cleanRel(p string) string {
	rel := path.Clean(strings.TrimPrefix(filepath.ToSlash(p), "/"))
	if rel == "." {
		return ""
	}
	return rel
}

// checkSHA enforces the write precondition against the file on disk.
func checkSHA(full, sha string) error {
	current, err := os.ReadFile(full)
	switch {
	case errors.Is(err, fs.ErrNotExist) && sha == "":
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Errorf("%w: file no longer exists", domain.ErrConflict)
	case err != nil:
		return err
	case sha != contentSHA(current):
		return fmt.Errorf("%w: sha mismatch", domain.ErrConflict)
	}
	return nil
}

func contentSHA(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
