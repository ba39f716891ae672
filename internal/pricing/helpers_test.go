package pricing

import (
	"time"

	"github.com/yourusername/arb-scanner/internal/models"
)

var snapshotTime = time.Date(2025, 3, 14, 18, 0, 0, 0, time.UTC)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func h2h(game, book, outcome string, odds int) models.PriceRecord {
	return models.PriceRecord{
		GameID:       game,
		CapturedAt:   snapshotTime,
		Bookmaker:    book,
		Market:       models.MarketH2H,
		Outcome:      outcome,
		OddsAmerican: intPtr(odds),
	}
}

func lined(market models.Market, game, book, outcome string, line float64, odds int) models.PriceRecord {
	return models.PriceRecord{
		GameID:       game,
		CapturedAt:   snapshotTime,
		Bookmaker:    book,
		Market:       market,
		Outcome:      outcome,
		Line:         floatPtr(line),
		OddsAmerican: intPtr(odds),
	}
}

func spread(game, book, outcome string, line float64, odds int) models.PriceRecord {
	return lined(models.MarketSpreads, game, book, outcome, line, odds)
}

func dukeUNCRecords() []models.PriceRecord {
	return []models.PriceRecord{
		h2h("g1", "book_a", "Duke", 110),
		h2h("g1", "book_a", "UNC", -130),
		h2h("g1", "book_b", "Duke", -130),
		h2h("g1", "book_b", "UNC", 110),
	}
}

func spreadRecords() []models.PriceRecord {
	return []models.PriceRecord{
		spread("g1", "book_a", "Duke", -3.5, 105),
		spread("g1", "book_a", "UNC", 3.5, -125),
		spread("g1", "book_b", "Duke", -3.5, -125),
		spread("g1", "book_b", "UNC", 3.5, 105),
		spread("g1", "book_c", "Duke", -4.5, -110),
		spread("g1", "book_c", "UNC", 4.5, -110),
	}
}
