package domain

// ROI defaults applied when a block's annotation omits a value.
const (
	DefaultBlocksAdded  = 1
	DefaultSavedMinutes = 15
	DefaultRateUSD      = 120.0
)

// ROIEstimate is the structured form of one block's ROI annotation.
type ROIEstimate struct {
	BlocksAdded  int     `json:"blocks_added"`
	SavedMinutes int     `json:"saved_minutes"`
	RateUSD      float64 `json:"rate_usd_per_hour"`
	ValueUSD     float64 `json:"value_usd_est"`
	Assumptions  string  `json:"assumptions"`
}

// ROIAggregate sums estimates across one run.
// RateUSD is always DefaultRateUSD; per-block rates are not averaged.
type ROIAggregate struct {
	BlocksAdded  int     `json:"blocks_added"`
	SavedMinutes int     `json:"saved_minutes"`
	RateUSD      float64 `json:"rate_usd_per_hour"`
	ValueUSD     float64 `json:"value_usd_est"`
}
