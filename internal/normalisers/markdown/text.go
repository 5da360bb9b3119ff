package markdown

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	inlineCode  = regexp.MustCompile("`([^`]+)`")
	images      = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	links       = regexp.MustCompile(`\[([^\]]+)\]\([^)]*\)`)
	wikiLinks   = regexp.MustCompile(`\[\[([^\]|]+)(?:\|([^\]]+))?\]\]`)
	headings    = regexp.MustCompile(`(?m)^[ \t]*#{1,6}[ \t]*`)
	blockquote  = regexp.MustCompile(`(?m)^[ \t]*>[ \t]?`)
	hr          = regexp.MustCompile(`(?m)^[ \t]*[-*_]{3,}[ \t]*$`)
	listMarkers = regexp.MustCompile(`(?m)^[ \t]*(?:[-*+]|\d+\.)[ \t]+`)
	emphasis    = strings.NewReplacer("**", "", "__", "", "*", "", "~~", "", "|", " ")
)

// stripMarkdown removes common Markdown formatting, leaving plain prose.
// Fenced code must already be masked.
func stripMarkdown(content string) string {
	content = images.ReplaceAllString(content, "")
	content = wikiLinks.ReplaceAllStringFunc(content, func(m string) string {
		sub := wikiLinks.FindStringSubmatch(m)
		if sub[2] != "" {
			return sub[2]
		}
		return sub[1]
	})
	content = links.ReplaceAllString(content, "$1")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = emphasis.Replace(content)
	return content
}

// collapseWhitespace joins the fields of s with single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts s to at most n runes, trimming trailing space.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return strings.TrimRightFunc(s[:i], unicode.IsSpace)
		}
		count++
	}
	return s
}

// plainExcerpt strips Markdown from text and returns its first n runes.
func plainExcerpt(text string, n int) string {
	return truncateRunes(collapseWhitespace(stripMarkdown(MaskFencedCode(text))), n)
}

// SearchTokens derives the token string matched by full-text search:
// fenced code removed, lowercased, anything but letters, digits and
// whitespace dropped, whitespace collapsed.
func SearchTokens(raw string) string {
	masked := MaskFencedCode(raw)
	var b strings.Builder
	b.Grow(len(masked))
	for _, r := range masked {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return collapseWhitespace(b.String())
}
