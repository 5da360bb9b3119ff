package markdown

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

// sectionName matches every recognised spelling of a section name.
const sectionName = `context|insights|offer[\s_-]+applications|benefits|risks|mitigations|` +
	`cross[\s_-]*links|cross[\s_-]*references|tags|roi(?:[\s_-]+takeaway)?`

var (
	headingMarker = regexp.MustCompile(`(?i)^[ \t]{0,3}###[ \t]+(` + sectionName + `)[ \t]*:?[ \t]*$`)
	boldMarker    = regexp.MustCompile(`(?i)^[ \t]*\*\*(` + sectionName + `)(?::\*\*|\*\*[ \t]*:)[ \t]*(.*)$`)
	plainMarker   = regexp.MustCompile(`(?i)^[ \t]*(` + sectionName + `)[ \t]*:[ \t]*(.*)$`)

	keySeparators = regexp.MustCompile(`[\s-]+`)
	tagSeparators = regexp.MustCompile(`[,\s;|/]+`)
)

// sectionAliases maps canonicalised spelling variants to vocabulary names.
var sectionAliases = map[string]string{
	"crosslinks":       domain.SectionCrossLinks,
	"cross_references": domain.SectionCrossLinks,
	"crossreferences":  domain.SectionCrossLinks,
	"roi":              domain.SectionROITakeaway,
}

// CanonicalSectionKey lowercases name and replaces whitespace and hyphens
// with underscores, then resolves known spelling variants.
func CanonicalSectionKey(name string) string {
	key := keySeparators.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	if alias, ok := sectionAliases[key]; ok {
		return alias
	}
	return key
}

// marker is one recognised section marker line within a block.
type marker struct {
	key       string
	lineStart int
	bodyStart int
}

// findMarkers scans masked block text for section marker lines.
func findMarkers(masked string) []marker {
	var markers []marker
	for start := 0; start < len(masked); {
		end := strings.IndexByte(masked[start:], '\n')
		next := len(masked)
		if end >= 0 {
			end += start
			next = end + 1
		} else {
			end = len(masked)
		}

		line := strings.TrimRight(masked[start:end], "\r")
		if m, ok := matchMarker(line); ok {
			bodyStart := next
			if m.inline >= 0 {
				bodyStart = start + m.inline
			}
			markers = append(markers, marker{key: m.key, lineStart: start, bodyStart: bodyStart})
		}
		start = next
	}
	return markers
}

type lineMatch struct {
	key    string
	inline int
}

// matchMarker tests one line against the three marker conventions.
// inline is the offset of text following the marker on the same line,
// or -1 when the body starts on the next line.
func matchMarker(line string) (lineMatch, bool) {
	if m := headingMarker.FindStringSubmatch(line); m != nil {
		return lineMatch{key: CanonicalSectionKey(m[1]), inline: -1}, true
	}
	for _, re := range []*regexp.Regexp{boldMarker, plainMarker} {
		loc := re.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		inline := -1
		if strings.TrimSpace(line[loc[4]:loc[5]]) != "" {
			inline = loc[4]
		}
		return lineMatch{key: CanonicalSectionKey(line[loc[2]:loc[3]]), inline: inline}, true
	}
	return lineMatch{}, false
}

// ExtractSections locates the named sections of one block and derives
// tags, raw cross-link tokens and the ROI text. Markers inside fenced code
// are ignored. Missing sections yield empty values, never errors.
func ExtractSections(raw string) domain.BlockData {
	masked := MaskFencedCode(raw)
	markers := findMarkers(masked)

	sections := make(domain.SectionMap)
	for i, m := range markers {
		end := len(raw)
		if i+1 < len(markers) {
			end = markers[i+1].lineStart
		}
		body := ""
		if m.bodyStart < end {
			body = strings.TrimSpace(raw[m.bodyStart:end])
		}
		if prev, ok := sections[m.key]; ok && prev != "" {
			if body != "" {
				sections[m.key] = prev + "\n\n" + body
			}
			continue
		}
		sections[m.key] = body
	}

	return domain.BlockData{
		Sections:   sections,
		Tags:       ParseTags(sections[domain.SectionTags]),
		CrossLinks: ParseCrossLinkTokens(sections[domain.SectionCrossLinks]),
		ROIText:    sections[domain.SectionROITakeaway],
	}
}

// ParseTags splits a tags body on commas, whitespace, semicolons, pipes and
// slashes. Tags are lowercased, trimmed and de-duplicated in order; tokens
// without letters or digits (list bullets, stray punctuation) are dropped.
func ParseTags(body string) []string {
	tags := []string{}
	seen := make(map[string]struct{})
	for _, tok := range tagSeparators.Split(body, -1) {
		tag := strings.ToLower(strings.TrimSpace(tok))
		if !hasAlphanumeric(tag) {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

// ParseCrossLinkTokens returns the whitespace-delimited tokens of a
// cross-links body. Markdown and wiki link syntax is skipped here because
// link extraction already reads those targets from the whole block.
func ParseCrossLinkTokens(body string) []string {
	var tokens []string
	for _, tok := range strings.Fields(body) {
		tok = strings.TrimRight(tok, ",;")
		if !hasAlphanumeric(tok) {
			continue
		}
		if strings.Contains(tok, "](") || strings.Contains(tok, "[[") || strings.Contains(tok, "]]") {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}

func hasAlphanumeric(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
