package service

import (
	"fmt"
	"io"
	"math"

	"github.com/sirupsen/logrus"
)

// DataValidator validates flattened odds rows before they are stored
type DataValidator struct {
	logger *logrus.Entry
}

// NewDataValidator creates a new data validator
func NewDataValidator(logger *logrus.Logger) *DataValidator {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	return &DataValidator{logger: logger.WithField("component", "validator")}
}

// ValidateRow checks one row for required fields and constraints
func (v *DataValidator) ValidateRow(row OddsRow) []string {
	var errors []string

	// Check required fields
	if row.GameID == "" {
		errors = append(errors, "game id is required")
	}

	if row.Bookmaker == "" {
		errors = append(errors, "bookmaker is required")
	}

	if row.Outcome == "" {
		errors = append(errors, "outcome is required")
	}

	if _, err := parseCommenceTime(row.CommenceTime); err != nil {
		errors = append(errors, fmt.Sprintf("commence_time must be RFC 3339, got %q", row.CommenceTime))
	}

	if !row.Market.IsKnown() {
		errors = append(errors, fmt.Sprintf("unsupported market %q", row.Market))
	}

	// American odds are whole numbers and never zero
	if row.Price == 0 {
		errors = append(errors, "odds must be non-zero")
	} else if row.Price != math.Trunc(row.Price) {
		errors = append(errors, fmt.Sprintf("odds must be a whole american price, got %v", row.Price))
	}

	if row.Market.IsKnown() {
		if row.Market.IsLineMarket() && row.Point == nil {
			errors = append(errors, fmt.Sprintf("%s row requires a line", row.Market))
		}
		if !row.Market.IsLineMarket() && row.Point != nil {
			errors = append(errors, fmt.Sprintf("%s row must not carry a line", row.Market))
		}
	}

	return errors
}

// Filter returns the valid rows and the number rejected
func (v *DataValidator) Filter(rows []OddsRow) ([]OddsRow, int) {
	valid := make([]OddsRow, 0, len(rows))
	rejected := 0

	for _, row := range rows {
		if errs := v.ValidateRow(row); len(errs) > 0 {
			rejected++
			v.logger.WithFields(logrus.Fields{
				"game_id":   row.GameID,
				"bookmaker": row.Bookmaker,
				"market":    row.Market,
				"outcome":   row.Outcome,
			}).Debugf("Rejected odds row: %v", errs)
			continue
		}
		valid = append(valid, row)
	}

	if rejected > 0 {
		v.logger.WithField("rejected", rejected).Warn("Dropped invalid odds rows")
	}

	return valid, rejected
}
