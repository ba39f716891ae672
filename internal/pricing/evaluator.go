package pricing

import (
	"time"

	"github.com/yourusername/arb-scanner/internal/models"
)

// DefaultTotalStake is the wager the stake split is computed for
const DefaultTotalStake = 100.0

// EvalInput is one group's best quotes plus the context needed to build an opportunity
type EvalInput struct {
	GameID     string
	CapturedAt time.Time
	Market     models.Market
	Quotes     []Quote
	MinEdge    float64
	TotalStake float64
}

// EvaluateTwoSided checks whether backing both sides at their best prices
// locks in a profit of at least MinEdge.
//
// It returns nil without error when the group does not have exactly two
// outcomes or when the margin is below MinEdge. The only error is an
// *InvalidOddsError for a zero price.
func EvaluateTwoSided(in EvalInput) (*models.ArbOpportunity, error) {
	if len(in.Quotes) != 2 || in.Quotes[0].Outcome == in.Quotes[1].Outcome {
		return nil, nil
	}
	a, b := in.Quotes[0], in.Quotes[1]

	probA, err := AmericanToImplied(a.OddsAmerican)
	if err != nil {
		return nil, err
	}
	probB, err := AmericanToImplied(b.OddsAmerican)
	if err != nil {
		return nil, err
	}

	totalImplied := probA + probB
	arb := 1 - totalImplied
	if arb < in.MinEdge {
		return nil, nil
	}

	wager := in.TotalStake
	if wager <= 0 {
		wager = DefaultTotalStake
	}

	withLine := in.Market.IsLineMarket()
	return &models.ArbOpportunity{
		GameID:     in.GameID,
		CapturedAt: in.CapturedAt,
		Market:     in.Market,
		LegA:       buildLeg(a, probA, withLine),
		LegB:       buildLeg(b, probB, withLine),
		ArbPercent: round(arb, 6),
		Stakes: map[string]float64{
			a.Outcome: round(wager*probA/totalImplied, 2),
			b.Outcome: round(wager*probB/totalImplied, 2),
		},
	}, nil
}

func buildLeg(q Quote, prob float64, withLine bool) models.BestLeg {
	leg := models.BestLeg{
		Outcome:      q.Outcome,
		Bookmaker:    q.Bookmaker,
		OddsAmerican: q.OddsAmerican,
		ImpliedProb:  round(prob, 6),
	}
	if withLine {
		leg.Line = copyLine(q.Line)
	}
	return leg
}
