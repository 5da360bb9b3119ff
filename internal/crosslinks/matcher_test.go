package crosslinks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udigitrentals/github-kb/internal/core/domain"
)

const (
	pricingPath = "/docs/md/pricing-plans.md"
	opsPath     = "/docs/md/ops.md"
)

func testIndex() *Index {
	ix := NewIndex()
	ix.AddDocument(pricingPath, "pricing-plans", "Pricing Plans")
	ix.AddDocument(opsPath, "ops", "Ops")
	return ix
}

func TestSubstringMatcher(t *testing.T) {
	tests := []struct {
		target string
		path   string
		ok     bool
	}{
		{opsPath, opsPath, true},
		{"ops", opsPath, true},
		{"pricing", pricingPath, true},
		{"PRICING PLANS", pricingPath, true},
		{"md", pricingPath, true},
		{"missing", "", false},
		{"  ", "", false},
	}

	ix := testIndex()
	for _, tc := range tests {
		t.Run(tc.target, func(t *testing.T) {
			path, ok := SubstringMatcher{}.Match(ix, tc.target)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.path, path)
		})
	}
}

func TestTitleMatcher(t *testing.T) {
	ix := testIndex()

	path, ok := TitleMatcher{}.Match(ix, "Pricing Plans!")
	assert.True(t, ok)
	assert.Equal(t, pricingPath, path)

	path, ok = TitleMatcher{}.Match(ix, "Ops")
	assert.True(t, ok)
	assert.Equal(t, opsPath, path)

	_, ok = TitleMatcher{}.Match(ix, "pricing")
	assert.False(t, ok)

	_, ok = TitleMatcher{}.Match(ix, "!!!")
	assert.False(t, ok)
}

func TestNewMatcher(t *testing.T) {
	m, err := NewMatcher("")
	require.NoError(t, err)
	assert.Equal(t, StrategySubstring, m.Name())

	m, err = NewMatcher("TITLE")
	require.NoError(t, err)
	assert.Equal(t, StrategyTitle, m.Name())

	_, err = NewMatcher("bogus")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	assert.Equal(t, []string{StrategySubstring, StrategyTitle}, MatcherNames())
}
