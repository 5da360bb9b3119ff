package driven

import (
	"context"
)

// ContentStore persists artifact files. Paths are slash-separated and
// relative to the store root. Every object carries a SHA that identifies
// the version read; writes and deletes use it for optimistic concurrency.
type ContentStore interface {
	// Name identifies the backend in logs.
	Name() string

	// Read returns a file and its SHA.
	// Returns domain.ErrNotFound if the file does not exist.
	Read(ctx context.Context, path string) (data []byte, sha string, err error)

	// Write creates or replaces a file and returns its new SHA.
	// An empty sha creates the file; a sha that no longer matches the
	// stored version returns domain.ErrConflict.
	Write(ctx context.Context, path string, data []byte, sha, message string) (string, error)

	// Delete removes a file. Deleting a missing file is not an error.
	Delete(ctx context.Context, path, sha, message string) error

	// List returns the file paths directly under dir, sorted.
	// A missing dir yields an empty list.
	List(ctx context.Context, dir string) ([]string, error)
}

// ConcurrentWriter is implemented by stores that accept parallel writes.
// Stores that commit to a single branch head serialise writes instead.
type ConcurrentWriter interface {
	SupportsConcurrentWrites() bool
}
