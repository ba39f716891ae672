package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidOdds is returned when an American odds value cannot be priced
var ErrInvalidOdds = errors.New("invalid american odds")

// InvalidOddsError carries the offending odds value
type InvalidOddsError struct {
	Odds int
}

func (e *InvalidOddsError) Error() string {
	return fmt.Sprintf("invalid american odds %d: zero is not a valid line", e.Odds)
}

// Unwrap allows errors.Is(err, ErrInvalidOdds)
func (e *InvalidOddsError) Unwrap() error {
	return ErrInvalidOdds
}

// AmericanToImplied converts American odds to the implied win probability.
// -110 -> 0.5238, +130 -> 0.4348, +100 -> 0.5.
func AmericanToImplied(odds int) (float64, error) {
	if odds == 0 {
		return 0, &InvalidOddsError{Odds: odds}
	}
	o := float64(odds)
	if odds < 0 {
		return -o / (-o + 100), nil
	}
	return 100 / (o + 100), nil
}

// AmericanToDecimal converts American odds to decimal odds (stake included)
func AmericanToDecimal(odds int) (float64, error) {
	if odds == 0 {
		return 0, &InvalidOddsError{Odds: odds}
	}
	o := float64(odds)
	if odds < 0 {
		return 1 + 100/-o, nil
	}
	return 1 + o/100, nil
}

// round rounds half away from zero on the shortest decimal representation of x
func round(x float64, places int32) float64 {
	return decimal.NewFromFloat(x).Round(places).InexactFloat64()
}

// canonicalLine renders a line value without float noise, e.g. -3.5 or 7
func canonicalLine(line float64) string {
	return decimal.NewFromFloat(line).String()
}
