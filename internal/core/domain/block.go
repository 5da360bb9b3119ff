package domain

// Block is a contiguous slice of the source document bounded by a
// recognised heading. Blocks are computed fresh on every run.
type Block struct {
	// Number is the declared block number, or the 1-based position
	// among discovered headings when the heading carries no number.
	Number int

	// Header is the heading line text without its trailing newline.
	// Empty for the implicit single block of a heading-less document.
	Header string

	// Raw is the verbatim block text including its heading.
	Raw string

	// Offset is the byte offset of Raw within the source document.
	Offset int
}

// Canonical section names recognised inside a block.
const (
	SectionContext           = "context"
	SectionInsights          = "insights"
	SectionOfferApplications = "offer_applications"
	SectionBenefits          = "benefits"
	SectionRisks             = "risks"
	SectionMitigations       = "mitigations"
	SectionCrossLinks        = "cross_links"
	SectionTags              = "tags"
	SectionROITakeaway       = "roi_takeaway"
)

// SectionNames lists the canonical section vocabulary in document order.
var SectionNames = []string{
	SectionContext,
	SectionInsights,
	SectionOfferApplications,
	SectionBenefits,
	SectionRisks,
	SectionMitigations,
	SectionCrossLinks,
	SectionTags,
	SectionROITakeaway,
}

// SectionMap maps canonical section names to their extracted body text.
type SectionMap map[string]string

// BlockData is everything the section extractor derives from one block.
type BlockData struct {
	// Sections holds the trimmed body of every section that was found.
	Sections SectionMap

	// Tags are lowercase, trimmed and never empty.
	Tags []string

	// CrossLinks are raw whitespace-delimited tokens from the cross-links section.
	CrossLinks []string

	// ROIText is the raw ROI section body.
	ROIText string
}
