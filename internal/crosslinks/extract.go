package crosslinks

import (
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/udigitrentals/github-kb/internal/normalisers/markdown"
)

var (
	wikiLink = regexp.MustCompile(`\[\[([^\]|#]+)(?:#[^\]|]*)?(?:\|[^\]]*)?\]\]`)
	kbRef    = regexp.MustCompile(`(?i)\bKB:(/[^\s)#\]]+)(?:#[\w-]+)?`)
	scheme   = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*:`)
)

// parser is safe for concurrent use.
var parser = goldmark.New().Parser()

// ExtractTargets returns the raw link targets of a block in order of
// appearance: Markdown link destinations first, then wiki links and KB
// references. Links inside code are ignored. External URLs and in-page
// anchors are not cross-links and are dropped; fragments are removed.
func ExtractTargets(raw string) []string {
	var targets []string
	add := func(t string) {
		if t = cleanTarget(t); t != "" {
			targets = append(targets, t)
		}
	}

	source := []byte(raw)
	doc := parser.Parse(text.NewReader(source))
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if link, ok := n.(*ast.Link); ok {
			add(string(link.Destination))
		}
		return ast.WalkContinue, nil
	})

	masked := markdown.MaskFencedCode(raw)
	for _, m := range wikiLink.FindAllStringSubmatch(masked, -1) {
		add(m[1])
	}
	for _, m := range kbRef.FindAllStringSubmatch(masked, -1) {
		add(m[1])
	}
	return targets
}

// cleanTarget trims a target and removes its fragment. It returns "" for
// targets that cannot name a knowledge-base document.
func cleanTarget(t string) string {
	t = strings.TrimSpace(t)
	if i := strings.IndexByte(t, '#'); i >= 0 {
		t = t[:i]
	}
	if t == "" || scheme.MatchString(t) {
		return ""
	}
	return t
}

// CollectTargets concatenates extracted link targets with the raw tokens
// of a cross-links section. Duplicates are removed, keeping first position.
func CollectTargets(raw string, tokens []string) []string {
	all := ExtractTargets(raw)
	for _, tok := range tokens {
		if tok = cleanTarget(tok); tok != "" {
			all = append(all, tok)
		}
	}

	seen := make(map[string]struct{}, len(all))
	out := all[:0]
	for _, t := range all {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
