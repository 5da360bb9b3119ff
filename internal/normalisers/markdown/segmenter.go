package markdown

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

var (
	// blockHeading matches "## Block 12 — Title" at any heading level.
	blockHeading = regexp.MustCompile(`(?im)^[ \t]{0,3}#{1,6}[ \t]*block[ \t]+(\d+)\b[^\n]*$`)

	h2Heading = regexp.MustCompile(`(?m)^[ \t]{0,3}##[ \t]+\S[^\n]*$`)
	h1Heading = regexp.MustCompile(`(?m)^[ \t]{0,3}#[ \t]+\S[^\n]*$`)
)

// Segment splits a document into ordered blocks.
//
// Headings are recognised with fenced code masked out, trying in order
// "block N" headings, level-2 headings and level-1 headings. A document
// with none of these is one implicit block numbered 1. Each block runs from
// its heading to the next recognised heading; the first block also owns any
// text before the first heading, so the blocks always reassemble into doc.
// Blocks keep source order and declared numbers are neither deduplicated
// nor validated.
func Segment(doc string) []domain.Block {
	if doc == "" {
		return nil
	}

	masked := MaskFencedCode(doc)
	locs := blockHeading.FindAllStringSubmatchIndex(masked, -1)
	numbered := len(locs) > 0
	if !numbered {
		locs = h2Heading.FindAllStringIndex(masked, -1)
	}
	if len(locs) == 0 {
		locs = h1Heading.FindAllStringIndex(masked, -1)
	}
	if len(locs) == 0 {
		return []domain.Block{{Number: 1, Raw: doc}}
	}

	blocks := make([]domain.Block, 0, len(locs))
	for i, loc := range locs {
		start := loc[0]
		if i == 0 {
			start = 0
		}
		end := len(doc)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}

		number := i + 1
		if numbered {
			if n, err := strconv.Atoi(doc[loc[2]:loc[3]]); err == nil {
				number = n
			}
		}

		blocks = append(blocks, domain.Block{
			Number: number,
			Header: strings.TrimSpace(doc[loc[0]:loc[1]]),
			Raw:    doc[start:end],
			Offset: start,
		})
	}
	return blocks
}
