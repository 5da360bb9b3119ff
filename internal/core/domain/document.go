package domain

import (
	"fmt"
	"time"
)

// RegistryEntry is the lightweight, indexable record for one block.
type RegistryEntry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Path      string    `json:"path"`
	Tags      []string  `json:"tags"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Attachments replicates the raw block alongside its digest and section extracts.
type Attachments struct {
	// RawMarkdown must be byte-identical to SearchDocument.Content.
	RawMarkdown string `json:"raw_markdown"`

	// SHA256 is the hex digest of RawMarkdown.
	SHA256 string `json:"sha256"`

	// Sections holds the raw per-section extracts.
	Sections SectionMap `json:"sections"`
}

// BlockMeta records where a document came from in the source.
type BlockMeta struct {
	Number int    `json:"number"`
	Header string `json:"header"`
}

// SearchDocument is the full-text record for one block.
// Build it with NewSearchDocument so the losslessness check always runs.
type SearchDocument struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Path        string      `json:"path"`
	Description string      `json:"description"`
	Snippet     string      `json:"snippet"`
	Tags        []string    `json:"tags"`
	Content     string      `json:"content"`
	Tokens      string      `json:"tokens"`
	Attachments Attachments `json:"attachments"`
	Block       BlockMeta   `json:"block"`
}

// NewSearchDocument assembles a search document and verifies that content
// and attachments.raw_markdown are identical. A mismatch returns
// ErrLosslessViolation and the document must be discarded.
func NewSearchDocument(doc SearchDocument, attachments Attachments) (*SearchDocument, error) {
	doc.Attachments = attachments
	if err := doc.CheckLossless(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// CheckLossless reports ErrLosslessViolation if Content and
// Attachments.RawMarkdown differ in any byte.
func (d *SearchDocument) CheckLossless() error {
	if d.Content != d.Attachments.RawMarkdown {
		return fmt.Errorf("%w: document %s (%d vs %d bytes)",
			ErrLosslessViolation, d.ID, len(d.Content), len(d.Attachments.RawMarkdown))
	}
	return nil
}
