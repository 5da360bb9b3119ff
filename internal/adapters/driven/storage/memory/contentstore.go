package memory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
)

// Ensure ContentStore implements the interfaces.
var (
	_ driven.ContentStore     = (*ContentStore)(nil)
	_ driven.ConcurrentWriter = (*ContentStore)(nil)
)

// Commit is one recorded write or delete.
type Commit struct {
	Path    string
	Message string
	Deleted bool
}

// ContentStore is an in-memory driven.ContentStore. It enforces the same
// SHA preconditions as the remote backends and records every change.
type ContentStore struct {
	mu      sync.RWMutex
	files   map[string][]byte
	commits []Commit
}

// NewContentStore creates an empty content store.
func NewContentStore() *ContentStore {
	return &ContentStore{files: make(map[string][]byte)}
}

// Name identifies the backend.
func (s *ContentStore) Name() string {
	return "memory"
}

// SupportsConcurrentWrites reports true; the map is guarded by a mutex.
func (s *ContentStore) SupportsConcurrentWrites() bool {
	return true
}

// Read returns a copy of the stored file and its SHA.
func (s *ContentStore) Read(ctx context.Context, p string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.files[clean(p)]
	if !ok {
		return nil, "", fmt.Errorf("%s: %w", p, domain.ErrNotFound)
	}
	return append([]byte(nil), data...), contentSHA(data), nil
}

// Write stores data at p if sha matches the current version.
func (s *ContentStore) Write(ctx context.Context, p string, data []byte, sha, message string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := clean(p)
	if err := s.checkSHA(key, sha); err != nil {
		return "", err
	}
	s.files[key] = append([]byte(nil), data...)
	s.commits = append(s.commits, Commit{Path: key, Message: message})
	return contentSHA(data), nil
}

// Delete removes p. A missing file is not an error.
func (s *ContentStore) Delete(ctx context.Context, p, sha, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := clean(p)
	if _, ok := s.files[key]; !ok {
		return nil
	}
	if err := s.checkSHA(key, sha); err != nil {
		return err
	}
	delete(s.files, key)
	s.commits = append(s.commits, Commit{Path: key, Message: message, Deleted: true})
	return nil
}

// List returns the files directly under dir, sorted.
func (s *ContentStore) List(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir = clean(dir)
	if dir == "" {
		dir = "."
	}
	out := []string{}
	for key := range s.files {
		if path.Dir(key) == dir {
			out = append(out, key)
		}
	}
	sort.Strings(out)
	return out, nil
}

// Commits returns the recorded changes in order.
func (s *ContentStore) Commits() []Commit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Commit(nil), s.commits...)
}

// Put seeds a file without recording a commit.
func (s *ContentStore) Put(p string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[clean(p)] = append([]byte(nil), data...)
}

// checkSHA enforces the write precondition. Caller must hold the lock.
// An empty sha skips the check for new files only.
func (s *ContentStore) checkSHA(key, sha string) error {
	current, exists := s.files[key]
	switch {
	case !exists && sha == "":
		return nil
	case !exists:
		return fmt.Errorf("%s: %w: file no longer exists", key, domain.ErrConflict)
	case sha != contentSHA(current):
		return fmt.Errorf("%s: %w: sha mismatch", key, domain.ErrConflict)
	}
	return nil
}

func clean(p string) string {
	return strings.TrimPrefix(path.Clean("/"+p), "/")
}

func contentSHA(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
