package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/yourusername/arb-scanner/internal/models"
)

// Group is the set of records the selector and evaluator operate on together
type Group struct {
	Key     string
	GameID  string
	Market  models.Market
	Records []models.PriceRecord
}

// CapturedAt returns the capture time of the first record in the group
func (g Group) CapturedAt() (t time.Time) {
	if len(g.Records) > 0 {
		t = g.Records[0].CapturedAt
	}
	return t
}

// Grouper partitions a snapshot into independent groups for one market
type Grouper interface {
	Group(records []models.PriceRecord) []Group
	Market() models.Market
}

// MoneylineGrouper groups a non-line market by game
type MoneylineGrouper struct {
	market models.Market
}

// NewMoneylineGrouper creates a grouper for a market quoted without lines
func NewMoneylineGrouper(market models.Market) *MoneylineGrouper {
	return &MoneylineGrouper{market: market}
}

// Market returns the market this grouper selects
func (g *MoneylineGrouper) Market() models.Market {
	return g.market
}

// Group keeps records of the target market that carry odds, keyed by game id
func (g *MoneylineGrouper) Group(records []models.PriceRecord) []Group {
	b := newGroupBuilder(g.market)
	for i := range records {
		r := &records[i]
		if r.Market != g.market || r.OddsAmerican == nil {
			continue
		}
		b.add(r.GameID, r.GameID, r)
	}
	return b.groups
}

// LineGrouper groups a line market by game and absolute line, so that
// -3.5 and +3.5 are compared as two sides of the same wager.
type LineGrouper struct {
	market models.Market
}

// NewLineGrouper creates a grouper for a market quoted with spread or total lines
func NewLineGrouper(market models.Market) *LineGrouper {
	return &LineGrouper{market: market}
}

// Market returns the market this grouper selects
func (g *LineGrouper) Market() models.Market {
	return g.market
}

// Group keeps records of the target market with both a line and odds,
// keyed by game id and the absolute line rounded to one decimal.
func (g *LineGrouper) Group(records []models.PriceRecord) []Group {
	b := newGroupBuilder(g.market)
	for i := range records {
		r := &records[i]
		if r.Market != g.market || r.Line == nil || r.OddsAmerican == nil {
			continue
		}
		key := fmt.Sprintf("%s|%s", r.GameID, lineBucket(*r.Line))
		b.add(key, r.GameID, r)
	}
	return b.groups
}

// GrouperFor returns the grouper matching a known market
func GrouperFor(market models.Market) (Grouper, error) {
	switch {
	case market == models.MarketH2H:
		return NewMoneylineGrouper(market), nil
	case market.IsLineMarket():
		return NewLineGrouper(market), nil
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidMarket, market)
	}
}

func lineBucket(line float64) string {
	return decimal.NewFromFloat(math.Abs(line)).Round(1).StringFixed(1)
}

// groupBuilder accumulates groups in order of first appearance
type groupBuilder struct {
	market models.Market
	index  map[string]int
	groups []Group
}

func newGroupBuilder(market models.Market) *groupBuilder {
	return &groupBuilder{market: market, index: make(map[string]int)}
}

func (b *groupBuilder) add(key, gameID string, r *models.PriceRecord) {
	pos, ok := b.index[key]
	if !ok {
		pos = len(b.groups)
		b.index[key] = pos
		b.groups = append(b.groups, Group{Key: key, GameID: gameID, Market: b.market})
	}
	b.groups[pos].Records = append(b.groups[pos].Records, *r)
}
