package roi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

func TestParse_Empty(t *testing.T) {
	est := Parse("  \n")

	assert.Equal(t, domain.DefaultBlocksAdded, est.BlocksAdded)
	assert.Equal(t, domain.DefaultSavedMinutes, est.SavedMinutes)
	assert.Equal(t, domain.DefaultRateUSD, est.RateUSD)
	assert.Equal(t, 30.00, est.ValueUSD)
	assert.Equal(t, AssumptionDefault, est.Assumptions)
}

func TestParse_AllFields(t *testing.T) {
	est := Parse("blocks_added: 3, saved_minutes=45, rate_usd_per_hour: 150.5")

	assert.Equal(t, 3, est.BlocksAdded)
	assert.Equal(t, 45, est.SavedMinutes)
	assert.Equal(t, 150.5, est.RateUSD)
	assert.Equal(t, 112.88, est.ValueUSD)
	assert.Equal(t, AssumptionParsed, est.Assumptions)
}

func TestParse_PerFieldDefaults(t *testing.T) {
	est := Parse("Saved_Minute 90 for the team")

	assert.Equal(t, domain.DefaultBlocksAdded, est.BlocksAdded)
	assert.Equal(t, 90, est.SavedMinutes)
	assert.Equal(t, domain.DefaultRateUSD, est.RateUSD)
	assert.Equal(t, 180.00, est.ValueUSD)
	assert.Equal(t, "defaults applied: blocks_added, rate_usd_per_hour", est.Assumptions)
}

func TestParse_FreeText(t *testing.T) {
	est := Parse("Saves roughly an afternoon per quarter.")

	assert.Equal(t, 30.00, est.ValueUSD)
	assert.Equal(t, "defaults applied: blocks_added, saved_minutes, rate_usd_per_hour", est.Assumptions)
}

func TestValue(t *testing.T) {
	assert.Equal(t, 30.00, Value(15, 120))
	assert.Equal(t, 0.0, Value(0, 120))
	assert.Equal(t, 33.33, Value(20, 100))
}

func TestAggregate(t *testing.T) {
	items := []domain.ROIEstimate{
		Parse(""),
		Parse("block_added 2 saved_minutes 30 rate 200"),
	}

	agg := Aggregate(items)
	assert.Equal(t, 3, agg.BlocksAdded)
	assert.Equal(t, 45, agg.SavedMinutes)
	assert.Equal(t, 130.00, agg.ValueUSD)

	// The aggregate rate stays at the default even though one item used 200/hr.
	assert.Equal(t, domain.DefaultRateUSD, agg.RateUSD)
	assert.True(t, MixedRates(items))
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(nil)

	assert.Zero(t, agg.BlocksAdded)
	assert.Zero(t, agg.ValueUSD)
	assert.Equal(t, domain.DefaultRateUSD, agg.RateUSD)
	assert.False(t, MixedRates(nil))
}
