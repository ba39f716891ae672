package pricing

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/arb-scanner/internal/models"
)

func newTestScanner(t *testing.T, opts Options) *Scanner {
	t.Helper()
	s, err := NewScanner(opts)
	require.NoError(t, err)
	return s
}

func TestScanDukeUNCScenario(t *testing.T) {
	s := newTestScanner(t, DefaultOptions().WithMinEdge(0))

	opps, err := s.Scan(dukeUNCRecords())
	require.NoError(t, err)
	require.Len(t, opps, 1)

	opp := opps[0]
	assert.Equal(t, "g1", opp.GameID)
	assert.Equal(t, models.MarketH2H, opp.Market)
	assert.Greater(t, opp.ArbPercent, 0.04)
	assert.Less(t, abs(opp.Stakes["Duke"]-opp.Stakes["UNC"]), 1.0)
}

func TestScanSpreadsScenario(t *testing.T) {
	s := newTestScanner(t, DefaultOptions().WithMinEdge(0))

	opps, err := s.Scan(spreadRecords())
	require.NoError(t, err)
	require.Len(t, opps, 1, "the 4.5 group is standard vig and must not merge with 3.5")

	opp := opps[0]
	assert.Equal(t, models.MarketSpreads, opp.Market)
	assert.InDelta(t, 0.02439, opp.ArbPercent, 1e-5)

	require.NotNil(t, opp.LegA.Line)
	require.NotNil(t, opp.LegB.Line)
	assert.Equal(t, "Duke", opp.LegA.Outcome)
	assert.Equal(t, -3.5, *opp.LegA.Line)
	assert.Equal(t, "book_a", opp.LegA.Bookmaker)
	assert.Equal(t, "UNC", opp.LegB.Outcome)
	assert.Equal(t, 3.5, *opp.LegB.Line)
	assert.Equal(t, "book_b", opp.LegB.Bookmaker)
}

func TestScanMinEdgeFilter(t *testing.T) {
	records := []models.PriceRecord{
		h2h("g1", "book_a", "Duke", 103),
		h2h("g1", "book_b", "UNC", -100),
	}

	opps, err := newTestScanner(t, DefaultOptions()).Scan(records)
	require.NoError(t, err)
	assert.Len(t, opps, 1)

	opps, err = newTestScanner(t, DefaultOptions().WithMinEdge(0.05)).Scan(records)
	require.NoError(t, err)
	assert.Empty(t, opps)
}

func TestScanSortsByMarginDescending(t *testing.T) {
	records := []models.PriceRecord{
		h2h("g1", "book_a", "Duke", 105),
		h2h("g1", "book_b", "UNC", 105),
		h2h("g2", "book_a", "Kansas", 130),
		h2h("g2", "book_b", "Baylor", 130),
		spread("g3", "book_a", "Gonzaga", -6.5, 115),
		spread("g3", "book_b", "Purdue", 6.5, 115),
	}

	opps, err := newTestScanner(t, DefaultOptions()).Scan(records)
	require.NoError(t, err)
	require.Len(t, opps, 3)

	assert.Equal(t, "g2", opps[0].GameID)
	assert.Equal(t, "g3", opps[1].GameID)
	assert.Equal(t, "g1", opps[2].GameID)
	for i := 1; i < len(opps); i++ {
		assert.GreaterOrEqual(t, opps[i-1].ArbPercent, opps[i].ArbPercent)
	}
}

func TestScanNoCrossGameLeakage(t *testing.T) {
	records := []models.PriceRecord{
		h2h("g1", "book_a", "Duke", 200),
		h2h("g1", "book_a", "UNC", -250),
		h2h("g2", "book_b", "Duke", -250),
		h2h("g2", "book_b", "UNC", 200),
	}

	opps, err := newTestScanner(t, DefaultOptions().WithMinEdge(0)).Scan(records)
	require.NoError(t, err)
	assert.Empty(t, opps)
}

func TestScanNoCrossMarketLeakage(t *testing.T) {
	records := []models.PriceRecord{
		h2h("g1", "book_a", "Duke", 150),
		spread("g1", "book_b", "UNC", 3.5, 150),
	}

	opps, err := newTestScanner(t, DefaultOptions().WithMinEdge(0)).Scan(records)
	require.NoError(t, err)
	assert.Empty(t, opps)
}

func TestScanStakesSumToWager(t *testing.T) {
	records := append(dukeUNCRecords(), spreadRecords()...)
	records = append(records,
		h2h("g7", "book_a", "Lakers", 175),
		h2h("g7", "book_c", "Celtics", -140),
	)

	opps, err := newTestScanner(t, DefaultOptions().WithMinEdge(0)).Scan(records)
	require.NoError(t, err)
	require.NotEmpty(t, opps)
	for _, opp := range opps {
		assert.InDelta(t, 100.0, opp.TotalStake(), stakeTolerance, "game %s market %s", opp.GameID, opp.Market)
		assert.NotEqual(t, opp.LegA.Outcome, opp.LegB.Outcome)
	}
}

func TestScanTotalsMarket(t *testing.T) {
	records := []models.PriceRecord{
		lined(models.MarketTotals, "g1", "book_a", "Over", 220.5, 108),
		lined(models.MarketTotals, "g1", "book_b", "Under", 220.5, 104),
		lined(models.MarketTotals, "g1", "book_b", "Over", 221.5, -110),
	}

	opps, err := newTestScanner(t, DefaultOptions()).Scan(records)
	require.NoError(t, err)
	assert.Empty(t, opps, "totals are not scanned by default")

	opps, err = newTestScanner(t, DefaultOptions().WithMarkets(models.MarketTotals)).Scan(records)
	require.NoError(t, err)
	require.Len(t, opps, 1)
	assert.Equal(t, models.MarketTotals, opps[0].Market)
	assert.Equal(t, 220.5, *opps[0].LegA.Line)
}

func TestScanInvalidOddsDoesNotAbort(t *testing.T) {
	records := append(dukeUNCRecords(),
		h2h("g_bad", "book_a", "Kansas", 0),
		h2h("g_bad", "book_b", "Baylor", 120),
	)

	opps, err := newTestScanner(t, DefaultOptions().WithMinEdge(0)).Scan(records)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidOdds)
	assert.Contains(t, err.Error(), "g_bad")

	var oddsErr *InvalidOddsError
	require.True(t, errors.As(err, &oddsErr))
	assert.Equal(t, 0, oddsErr.Odds)

	require.Len(t, opps, 1)
	assert.Equal(t, "g1", opps[0].GameID)
}

func TestScanIsDeterministic(t *testing.T) {
	records := append(dukeUNCRecords(), spreadRecords()...)
	records = append(records,
		h2h("g2", "book_a", "Kansas", 130),
		h2h("g2", "book_b", "Baylor", 130),
	)
	s := newTestScanner(t, DefaultOptions().WithMinEdge(0))

	first, err := s.Scan(records)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := s.Scan(records)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestScanPreservesGroupOrderAcrossWorkers(t *testing.T) {
	var records []models.PriceRecord
	var want []string
	for i := 0; i < 50; i++ {
		game := fmt.Sprintf("g%02d", i)
		records = append(records,
			h2h(game, "book_a", "Home", 105),
			h2h(game, "book_b", "Away", 105),
		)
		want = append(want, game)
	}
	s := newTestScanner(t, DefaultOptions().WithMinEdge(0))

	opps, err := s.Scan(records)
	require.NoError(t, err)
	require.Len(t, opps, len(want))

	got := make([]string, 0, len(opps))
	for _, opp := range opps {
		got = append(got, opp.GameID)
	}
	assert.Equal(t, want, got, "equal margins keep first-appearance order")
}

func TestStandardVigIsNeverAnArb(t *testing.T) {
	records := []models.PriceRecord{
		h2h("g1", "book_a", "Duke", -110),
		h2h("g1", "book_b", "UNC", -110),
	}
	opps, err := newTestScanner(t, DefaultOptions().WithMinEdge(0)).Scan(records)
	require.NoError(t, err)
	assert.Empty(t, opps)
}

func TestIsValidMinEdge(t *testing.T) {
	assert.True(t, IsValidMinEdge(0))
	assert.True(t, IsValidMinEdge(DefaultMinEdge))
	assert.False(t, IsValidMinEdge(-0.001))
	assert.False(t, IsValidMinEdge(math.NaN()))
	assert.False(t, IsValidMinEdge(math.Inf(1)))
	assert.False(t, IsValidMinEdge(math.Inf(-1)))
}

func TestScanEmptySnapshot(t *testing.T) {
	opps, err := newTestScanner(t, DefaultOptions()).Scan(nil)
	require.NoError(t, err)
	assert.Empty(t, opps)
}

func TestNewScannerRejectsInvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{"negative edge", DefaultOptions().WithMinEdge(-0.01)},
		{"NaN edge", DefaultOptions().WithMinEdge(math.NaN())},
		{"infinite edge", DefaultOptions().WithMinEdge(math.Inf(1))},
		{"NaN stake", Options{MinEdge: 0, Markets: DefaultMarkets, TotalStake: math.NaN()}},
		{"no markets", DefaultOptions().WithMarkets()},
		{"unknown market", DefaultOptions().WithMarkets("outrights")},
		{"zero stake", Options{MinEdge: 0, Markets: DefaultMarkets}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScanner(tt.opts)
			assert.Error(t, err)
		})
	}
}

func TestOptionsAreCopied(t *testing.T) {
	markets := []models.Market{models.MarketH2H}
	opts := DefaultOptions().WithMarkets(markets...)
	s := newTestScanner(t, opts)

	markets[0] = models.MarketTotals
	assert.Equal(t, []models.Market{models.MarketH2H}, s.Options().Markets)
}
