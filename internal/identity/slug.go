package identity

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// MaxSlugAttempts bounds suffix probing before falling back to a
// timestamp suffix.
const MaxSlugAttempts = 10000

// PathPrefix is the canonical directory of every document path.
const PathPrefix = "/docs/md/"

var (
	slugDisallowed = regexp.MustCompile(`[^a-z0-9 -]+`)
	slugSeparators = regexp.MustCompile(`[\s-]+`)
	numericSuffix  = regexp.MustCompile(`^(.+)-(\d+)$`)
)

// now is replaced in tests.
var now = time.Now

// Slugify converts a title to a URL-safe slug. Titles without ASCII
// letters or digits produce "" and callers must substitute a fallback.
func Slugify(title string) string {
	s := strings.ToLower(norm.NFKD.String(title))
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugSeparators.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.Trim(s, "-")
}

// PathForSlug returns the canonical document path for slug.
func PathForSlug(slug string) string {
	return PathPrefix + slug + ".md"
}

// EnsureUniqueSlug returns base if it is not in taken, otherwise the first
// free numbered variant. When mark is true the result is added to taken.
func EnsureUniqueSlug(base string, taken map[string]struct{}, mark bool) string {
	slug := uniqueSlug(base, func(s string) bool {
		_, ok := taken[s]
		return ok
	})
	if mark {
		taken[slug] = struct{}{}
	}
	return slug
}

// uniqueSlug probes base, then base-2, base-3 ... A base that already ends
// in -N resumes at N+1.
func uniqueSlug(base string, isTaken func(string) bool) string {
	if !isTaken(base) {
		return base
	}

	stem, next := base, 2
	if m := numericSuffix.FindStringSubmatch(base); m != nil {
		if n, err := strconv.Atoi(m[2]); err == nil {
			stem, next = m[1], n+1
		}
	}

	for i := 0; i < MaxSlugAttempts; i++ {
		candidate := fmt.Sprintf("%s-%d", stem, next+i)
		if !isTaken(candidate) {
			return candidate
		}
	}
	return fmt.Sprintf("%s-%d", stem, now().UnixNano())
}

// SlugAllocator is the per-run accumulator of taken slugs. Each slug
// remembers the identifier that owns it, so a document keeps its slug
// when it is ingested again.
type SlugAllocator struct {
	owners map[string]string
}

// NewSlugAllocator creates an empty allocator.
func NewSlugAllocator() *SlugAllocator {
	return &SlugAllocator{owners: make(map[string]string)}
}

// Reserve records slug as owned by id. The first owner of a slug wins.
func (a *SlugAllocator) Reserve(slug, id string) {
	if slug == "" {
		return
	}
	if _, ok := a.owners[slug]; !ok {
		a.owners[slug] = id
	}
}

// Taken reports whether slug is held by any identifier.
func (a *SlugAllocator) Taken(slug string) bool {
	_, ok := a.owners[slug]
	return ok
}

// Allocate returns a slug for id derived from base, suffixing it when
// base is held by a different identifier, and records the result.
func (a *SlugAllocator) Allocate(base, id string) string {
	slug := uniqueSlug(base, func(s string) bool {
		owner, ok := a.owners[s]
		return ok && owner != id
	})
	a.owners[slug] = id
	return slug
}

// Len returns the number of taken slugs.
func (a *SlugAllocator) Len() int {
	return len(a.owners)
}
