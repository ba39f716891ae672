package service

import (
	"io"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/arb-scanner/internal/datasource"
	"github.com/yourusername/arb-scanner/internal/models"
	"github.com/yourusername/arb-scanner/internal/pricing"
)

// OddsRow is one price from one bookmaker for one outcome of one event
type OddsRow struct {
	GameID       string
	CommenceTime string
	HomeTeam     string
	AwayTeam     string
	Bookmaker    string
	Market       models.Market
	Outcome      string   // team name, "Over" or "Under"
	Price        float64  // American odds
	Point        *float64 // spread or total line; nil for h2h
}

// Normalizer converts provider events into storage shapes
type Normalizer struct {
	logger *logrus.Entry
}

// NewNormalizer creates a new normalizer
func NewNormalizer(logger *logrus.Logger) *Normalizer {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &Normalizer{logger: logger.WithField("component", "normalizer")}
}

// Flatten emits one row per event × bookmaker × market × outcome
func (n *Normalizer) Flatten(events []datasource.Event) []OddsRow {
	var rows []OddsRow
	for _, ev := range events {
		for _, book := range ev.Bookmakers {
			for _, market := range book.Markets {
				for _, outcome := range market.Outcomes {
					rows = append(rows, OddsRow{
						GameID:       ev.ID,
						CommenceTime: ev.CommenceTime,
						HomeTeam:     ev.HomeTeam,
						AwayTeam:     ev.AwayTeam,
						Bookmaker:    book.Key,
						Market:       models.Market(market.Key),
						Outcome:      outcome.Name,
						Price:        outcome.Price,
						Point:        outcome.Point,
					})
				}
			}
		}
	}
	return rows
}

// Prepare deduplicates games and stamps every price with capturedAt.
// Rows whose commence time does not parse are dropped.
func (n *Normalizer) Prepare(rows []OddsRow, sport string, capturedAt time.Time) ([]models.Game, []models.PriceRecord) {
	capturedAt = capturedAt.UTC().Truncate(time.Microsecond)

	seen := make(map[string]bool)
	bad := make(map[string]bool)
	var games []models.Game
	prices := make([]models.PriceRecord, 0, len(rows))

	for _, r := range rows {
		if bad[r.GameID] {
			continue
		}
		if !seen[r.GameID] {
			commence, err := parseCommenceTime(r.CommenceTime)
			if err != nil {
				n.logger.WithFields(logrus.Fields{
					"game_id":       r.GameID,
					"commence_time": r.CommenceTime,
				}).WithError(err).Warn("Dropping event with unparseable commence time")
				bad[r.GameID] = true
				continue
			}
			seen[r.GameID] = true
			games = append(games, models.Game{
				ExternalGameID: r.GameID,
				SportKey:       sport,
				CommenceTime:   commence,
				HomeTeam:       r.HomeTeam,
				AwayTeam:       r.AwayTeam,
			})
		}

		odds := int(math.Round(r.Price))
		price := models.PriceRecord{
			GameID:       r.GameID,
			CapturedAt:   capturedAt,
			Bookmaker:    r.Bookmaker,
			Market:       r.Market,
			Outcome:      r.Outcome,
			Line:         canonicalizeLine(r.Point),
			OddsAmerican: &odds,
		}
		if dec, err := pricing.AmericanToDecimal(odds); err == nil {
			v := decimal.NewFromFloat(dec).Round(4).InexactFloat64()
			price.OddsDecimal = &v
		}
		prices = append(prices, price)
	}

	return games, prices
}

func parseCommenceTime(raw string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// canonicalizeLine strips float noise so equal lines compare and store equal
func canonicalizeLine(point *float64) *float64 {
	if point == nil {
		return nil
	}
	v := decimal.NewFromFloat(*point).Round(1).InexactFloat64()
	return &v
}
