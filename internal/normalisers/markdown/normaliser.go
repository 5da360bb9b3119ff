package markdown

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/udigitrentals/github-kb/internal/core/domain"
	"github.com/udigitrentals/github-kb/internal/core/ports/driven"
	"github.com/udigitrentals/github-kb/internal/identity"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Excerpt lengths in runes.
const (
	DescriptionLength = 200
	SummaryLength     = 320
	SnippetLength     = 120
)

// UntitledTitle is used when a header carries no title text.
const UntitledTitle = "Untitled"

var (
	headingPrefix   = regexp.MustCompile(`^[ \t]*#{1,6}[ \t]*`)
	closingHashes   = regexp.MustCompile(`[ \t]+#+[ \t]*$`)
	titleSeparators = regexp.MustCompile(`[ \t]+[—–-]+[ \t]+|[ \t]*[—–]+[ \t]*`)
)

// Option configures a Normaliser.
type Option func(*Normaliser)

// WithClock sets the time source for created_at and updated_at.
func WithClock(now func() time.Time) Option {
	return func(n *Normaliser) {
		if now != nil {
			n.now = now
		}
	}
}

// Normaliser turns segmented blocks into registry entries and search documents.
type Normaliser struct {
	now func() time.Time
}

// New creates a new block normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{now: time.Now}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalise builds the registry entry and search document of one block.
// Slug and path are the title-derived candidates; uniqueness is decided by
// the caller.
func (n *Normaliser) Normalise(_ context.Context, block domain.Block) (*driven.NormaliseResult, error) {
	data := ExtractSections(block.Raw)

	id, fallback := identity.DeriveID(block.Raw)
	title := Title(block.Header)
	slug := identity.Slugify(title)
	if slug == "" {
		slug = "block-" + strconv.Itoa(block.Number)
	}
	path := identity.PathForSlug(slug)

	digest, err := identity.SHA256Hex(block.Raw)
	if err != nil {
		digest = ""
	}

	source := excerptSource(data.Sections, block.Raw)
	snippet := ""
	if benefits := data.Sections[domain.SectionBenefits]; benefits != "" {
		snippet = plainExcerpt(benefits, SnippetLength)
	}

	tags := data.Tags
	if tags == nil {
		tags = []string{}
	}

	doc, err := domain.NewSearchDocument(domain.SearchDocument{
		ID:          id,
		Title:       title,
		Slug:        slug,
		Path:        path,
		Description: plainExcerpt(source, DescriptionLength),
		Snippet:     snippet,
		Tags:        tags,
		Content:     block.Raw,
		Tokens:      SearchTokens(block.Raw),
		Block:       domain.BlockMeta{Number: block.Number, Header: block.Header},
	}, domain.Attachments{
		RawMarkdown: block.Raw,
		SHA256:      digest,
		Sections:    data.Sections,
	})
	if err != nil {
		return nil, &domain.InvariantError{BlockNumber: block.Number, Header: block.Header, Err: err}
	}

	ts := n.now().UTC()
	return &driven.NormaliseResult{
		Registry: domain.RegistryEntry{
			ID:        id,
			Title:     title,
			Slug:      slug,
			Path:      path,
			Tags:      append([]string{}, tags...),
			Summary:   plainExcerpt(source, SummaryLength),
			CreatedAt: ts,
			UpdatedAt: ts,
		},
		Search:     *doc,
		Data:       data,
		DegradedID: fallback != identity.FallbackNone,
	}, nil
}

// Title derives a document title from a block header line. Heading markers
// are stripped and the parts around dash-like separators are re-joined
// with an em dash. An empty result is UntitledTitle.
func Title(header string) string {
	text := strings.TrimSpace(headingPrefix.ReplaceAllString(header, ""))
	text = strings.TrimSpace(closingHashes.ReplaceAllString(text, ""))

	var parts []string
	for _, part := range titleSeparators.Split(text, -1) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return UntitledTitle
	}
	return strings.Join(parts, " — ")
}

// excerptSource picks the text that descriptions and summaries are cut from.
func excerptSource(sections domain.SectionMap, raw string) string {
	for _, key := range []string{domain.SectionContext, domain.SectionInsights, domain.SectionBenefits} {
		if body := sections[key]; body != "" {
			return body
		}
	}
	return raw
}
