package pricing

import (
	"github.com/yourusername/arb-scanner/internal/models"
)

// Quote is the best price found for one outcome within a group
type Quote struct {
	Outcome      string
	Bookmaker    string
	OddsAmerican int
	Line         *float64
}

// SelectBest returns the best quote per distinct outcome, ordered by the
// first appearance of each outcome in records.
//
// Greater American odds are always better for the bettor, so the strictly
// greatest value wins. Exact ties keep the quote seen first, which makes the
// winning bookmaker depend on input order. Records without odds are ignored.
func SelectBest(records []models.PriceRecord) []Quote {
	var quotes []Quote
	index := make(map[string]int)

	for i := range records {
		r := &records[i]
		if r.OddsAmerican == nil {
			continue
		}
		odds := *r.OddsAmerican

		pos, seen := index[r.Outcome]
		if !seen {
			index[r.Outcome] = len(quotes)
			quotes = append(quotes, Quote{
				Outcome:      r.Outcome,
				Bookmaker:    r.Bookmaker,
				OddsAmerican: odds,
				Line:         copyLine(r.Line),
			})
			continue
		}

		if odds > quotes[pos].OddsAmerican {
			quotes[pos].Bookmaker = r.Bookmaker
			quotes[pos].OddsAmerican = odds
			quotes[pos].Line = copyLine(r.Line)
		}
	}

	return quotes
}

func copyLine(line *float64) *float64 {
	if line == nil {
		return nil
	}
	v := *line
	return &v
}
