// Package roi parses the ROI annotations of blocks and totals them.
package roi

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

var (
	blocksAdded  = regexp.MustCompile(`(?i)blocks?_added\W*?(\d+)`)
	savedMinutes = regexp.MustCompile(`(?i)saved_minutes?\W*?(\d+)`)
	rate         = regexp.MustCompile(`(?i)rate\w*\W*?(\d+(?:\.\d+)?)`)
)

// Assumption texts recorded on parsed estimates.
const (
	AssumptionDefault = "no ROI annotation; defaults applied"
	AssumptionParsed  = "parsed from annotation"
)

// Parse converts ROI text into an estimate. Empty text yields the default
// estimate; otherwise each value missing from the text falls back to its
// own default.
func Parse(text string) domain.ROIEstimate {
	if strings.TrimSpace(text) == "" {
		return newEstimate(domain.DefaultBlocksAdded, domain.DefaultSavedMinutes, domain.DefaultRateUSD, AssumptionDefault)
	}

	var defaulted []string
	blocks, ok := matchInt(blocksAdded, text)
	if !ok {
		blocks = domain.DefaultBlocksAdded
		defaulted = append(defaulted, "blocks_added")
	}
	minutes, ok := matchInt(savedMinutes, text)
	if !ok {
		minutes = domain.DefaultSavedMinutes
		defaulted = append(defaulted, "saved_minutes")
	}
	r, ok := matchFloat(rate, text)
	if !ok {
		r = domain.DefaultRateUSD
		defaulted = append(defaulted, "rate_usd_per_hour")
	}

	assumptions := AssumptionParsed
	if len(defaulted) > 0 {
		assumptions = "defaults applied: " + strings.Join(defaulted, ", ")
	}
	return newEstimate(blocks, minutes, r, assumptions)
}

// Value returns the dollar value of minutes at rate per hour, rounded to cents.
func Value(minutes int, rate float64) float64 {
	return round2(float64(minutes) / 60 * rate)
}

// Aggregate sums estimates. The aggregate rate is always the default rate,
// whatever rates the items carry; see MixedRates.
func Aggregate(items []domain.ROIEstimate) domain.ROIAggregate {
	agg := domain.ROIAggregate{RateUSD: domain.DefaultRateUSD}
	for _, it := range items {
		agg.BlocksAdded += it.BlocksAdded
		agg.SavedMinutes += it.SavedMinutes
		agg.ValueUSD += it.ValueUSD
	}
	agg.ValueUSD = round2(agg.ValueUSD)
	return agg
}

// MixedRates reports whether any item's rate differs from the aggregate
// rate, in which case the aggregate rate does not describe the items.
func MixedRates(items []domain.ROIEstimate) bool {
	for _, it := range items {
		if it.RateUSD != domain.DefaultRateUSD {
			return true
		}
	}
	return false
}

func newEstimate(blocks, minutes int, r float64, assumptions string) domain.ROIEstimate {
	return domain.ROIEstimate{
		BlocksAdded:  blocks,
		SavedMinutes: minutes,
		RateUSD:      r,
		ValueUSD:     Value(minutes, r),
		Assumptions:  assumptions,
	}
}

func matchInt(re *regexp.Regexp, text string) (int, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

func matchFloat(re *regexp.Regexp, text string) (float64, bool) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
