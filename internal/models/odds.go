package models

import (
	"time"
)

// Market identifies a betting market as keyed by the odds provider
type Market string

const (
	MarketH2H     Market = "h2h"
	MarketSpreads Market = "spreads"
	MarketTotals  Market = "totals"
)

// IsLineMarket reports whether quotes in the market carry a line (spread or total)
func (m Market) IsLineMarket() bool {
	return m == MarketSpreads || m == MarketTotals
}

// IsKnown reports whether the market belongs to the supported set
func (m Market) IsKnown() bool {
	switch m {
	case MarketH2H, MarketSpreads, MarketTotals:
		return true
	default:
		return false
	}
}

// PriceRecord is one bookmaker quote for one outcome captured in a snapshot
type PriceRecord struct {
	ID           int64     `db:"id" json:"-"`
	GameID       string    `db:"external_game_id" json:"game_id" validate:"required"`
	CapturedAt   time.Time `db:"captured_at" json:"captured_at" validate:"required"`
	Bookmaker    string    `db:"bookmaker" json:"bookmaker" validate:"required"`
	Market       Market    `db:"market" json:"market" validate:"required"`
	Outcome      string    `db:"outcome" json:"outcome" validate:"required"`
	Line         *float64  `db:"line" json:"line"`
	OddsAmerican *int      `db:"odds_american" json:"odds_american"`
	OddsDecimal  *float64  `db:"odds_decimal" json:"odds_decimal,omitempty"`
}

// HasOdds reports whether the record carries an American price
func (p *PriceRecord) HasOdds() bool {
	return p.OddsAmerican != nil
}

// HasLine reports whether the record carries a line value
func (p *PriceRecord) HasLine() bool {
	return p.Line != nil
}
