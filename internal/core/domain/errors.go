package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown backend, matcher or collection kind.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrLosslessViolation indicates a search document whose content differs
	// from its attachment copy. It signals a construction bug and is never
	// recovered from.
	ErrLosslessViolation = errors.New("content does not match attachments.raw_markdown")

	// ErrConflict indicates the stored object changed since it was read
	// (optimistic concurrency failure on the backing store).
	ErrConflict = errors.New("conflict")

	// ErrStoreUnavailable indicates no content store is configured.
	ErrStoreUnavailable = errors.New("content store unavailable")

	// ErrRateLimited indicates the remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrAuthRequired indicates the backend needs a token and none is configured.
	ErrAuthRequired = errors.New("authentication required")
)

// InvariantError reports an internal-consistency failure while building
// the records for one block.
type InvariantError struct {
	BlockNumber int
	Header      string
	Err         error
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("block %d (%q): %v", e.BlockNumber, e.Header, e.Err)
}

func (e *InvariantError) Unwrap() error {
	return e.Err
}
