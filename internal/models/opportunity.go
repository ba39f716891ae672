package models

import (
	"time"
)

// BestLeg is the most favourable quote found for one side of a market
type BestLeg struct {
	Outcome      string   `json:"outcome"`
	Bookmaker    string   `json:"bookmaker"`
	OddsAmerican int      `json:"odds_american"`
	ImpliedProb  float64  `json:"implied_prob"`
	Line         *float64 `json:"line,omitempty"`
}

// ArbOpportunity is a two-sided arbitrage across bookmakers.
// ArbPercent is a fraction: 0.02 means a guaranteed 2% return.
type ArbOpportunity struct {
	GameID     string             `json:"game_id"`
	CapturedAt time.Time          `json:"captured_at"`
	Market     Market             `json:"market"`
	LegA       BestLeg            `json:"leg_a"`
	LegB       BestLeg            `json:"leg_b"`
	ArbPercent float64            `json:"arb_percent"`
	Stakes     map[string]float64 `json:"stakes"`
}

// Legs returns both legs in construction order
func (o *ArbOpportunity) Legs() [2]BestLeg {
	return [2]BestLeg{o.LegA, o.LegB}
}

// TotalStake returns the sum of the stake allocation
func (o *ArbOpportunity) TotalStake() float64 {
	total := 0.0
	for _, stake := range o.Stakes {
		total += stake
	}
	return total
}

// GuaranteedProfit returns the profit locked in for the given total wager
func (o *ArbOpportunity) GuaranteedProfit(totalWager float64) float64 {
	return o.ArbPercent * totalWager
}
