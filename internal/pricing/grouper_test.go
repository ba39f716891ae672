package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/arb-scanner/internal/models"
)

func TestMoneylineGrouperPartitionsByGame(t *testing.T) {
	records := []models.PriceRecord{
		h2h("g2", "book_a", "Kansas", -150),
		h2h("g1", "book_a", "Duke", 110),
		spread("g1", "book_a", "Duke", -3.5, -110),
		h2h("g2", "book_b", "Baylor", 130),
		h2h("g1", "book_b", "UNC", 110),
	}

	groups := NewMoneylineGrouper(models.MarketH2H).Group(records)
	require.Len(t, groups, 2)

	assert.Equal(t, "g2", groups[0].GameID)
	assert.Len(t, groups[0].Records, 2)
	assert.Equal(t, "g1", groups[1].GameID)
	assert.Len(t, groups[1].Records, 2)
	for _, g := range groups {
		assert.Equal(t, models.MarketH2H, g.Market)
		for _, r := range g.Records {
			assert.Equal(t, models.MarketH2H, r.Market)
		}
	}
}

func TestMoneylineGrouperDropsMissingOdds(t *testing.T) {
	missing := h2h("g1", "book_a", "Duke", 0)
	missing.OddsAmerican = nil

	groups := NewMoneylineGrouper(models.MarketH2H).Group([]models.PriceRecord{missing})
	assert.Empty(t, groups)
}

func TestLineGrouperBucketsByAbsoluteLine(t *testing.T) {
	groups := NewLineGrouper(models.MarketSpreads).Group(spreadRecords())
	require.Len(t, groups, 2)

	assert.Equal(t, "g1|3.5", groups[0].Key)
	assert.Len(t, groups[0].Records, 4)
	assert.Equal(t, "g1|4.5", groups[1].Key)
	assert.Len(t, groups[1].Records, 2)
}

func TestLineGrouperRoundsToOneDecimal(t *testing.T) {
	records := []models.PriceRecord{
		spread("g1", "book_a", "Duke", -3.49, 105),
		spread("g1", "book_b", "UNC", 3.5, 105),
	}

	groups := NewLineGrouper(models.MarketSpreads).Group(records)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Records, 2)
}

func TestLineGrouperSkipsIncompleteRecords(t *testing.T) {
	noLine := spread("g1", "book_a", "Duke", 0, 105)
	noLine.Line = nil
	noOdds := spread("g1", "book_a", "UNC", 3.5, 0)
	noOdds.OddsAmerican = nil

	groups := NewLineGrouper(models.MarketSpreads).Group([]models.PriceRecord{noLine, noOdds})
	assert.Empty(t, groups)
}

func TestLineGrouperSeparatesGames(t *testing.T) {
	records := []models.PriceRecord{
		spread("g1", "book_a", "Duke", -3.5, 105),
		spread("g2", "book_b", "UNC", 3.5, 105),
	}

	groups := NewLineGrouper(models.MarketSpreads).Group(records)
	assert.Len(t, groups, 2)
}

func TestGroupCapturedAtUsesFirstRecord(t *testing.T) {
	later := h2h("g1", "book_b", "UNC", 110)
	later.CapturedAt = snapshotTime.Add(1)

	groups := NewMoneylineGrouper(models.MarketH2H).Group([]models.PriceRecord{
		h2h("g1", "book_a", "Duke", 110),
		later,
	})
	require.Len(t, groups, 1)
	assert.Equal(t, snapshotTime, groups[0].CapturedAt())
	assert.True(t, Group{}.CapturedAt().IsZero())
}

func TestGrouperFor(t *testing.T) {
	g, err := GrouperFor(models.MarketH2H)
	require.NoError(t, err)
	assert.IsType(t, &MoneylineGrouper{}, g)

	g, err = GrouperFor(models.MarketSpreads)
	require.NoError(t, err)
	assert.IsType(t, &LineGrouper{}, g)

	g, err = GrouperFor(models.MarketTotals)
	require.NoError(t, err)
	assert.Equal(t, models.MarketTotals, g.Market())

	_, err = GrouperFor("player_points")
	assert.ErrorIs(t, err, models.ErrInvalidMarket)
}
