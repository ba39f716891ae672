// Package logger provides scan-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/arb-scanner/internal/models"
)

// ScanLogger provides dedicated logging for arbitrage scans.
type ScanLogger struct {
	*logrus.Entry
}

// NewScanLogger creates a new scan logger.
func NewScanLogger(baseLogger *logrus.Logger) *ScanLogger {
	return &ScanLogger{
		Entry: baseLogger.WithField("component", "scanner"),
	}
}

// LogScanStarted logs the start of a scan over one snapshot.
func (sl *ScanLogger) LogScanStarted(sport string, capturedAt time.Time, records int) {
	sl.WithFields(logrus.Fields{
		"sport":       sport,
		"captured_at": capturedAt.UTC().Format(time.RFC3339),
		"records":     records,
	}).Debug("Arb scan started")
}

// LogScanCompleted logs scan results.
func (sl *ScanLogger) LogScanCompleted(sport string, opportunities int, duration time.Duration) {
	sl.WithFields(logrus.Fields{
		"sport":         sport,
		"opportunities": opportunities,
		"duration_ms":   duration.Milliseconds(),
	}).Info("Arb scan completed")
}

// LogOpportunity logs a single detected opportunity.
func (sl *ScanLogger) LogOpportunity(opp models.ArbOpportunity, fingerprint string) {
	sl.WithFields(logrus.Fields{
		"fingerprint": fingerprint,
		"game_id":     opp.GameID,
		"market":      opp.Market,
		"arb_percent": opp.ArbPercent,
		"leg_a":       opp.LegA.Outcome + "@" + opp.LegA.Bookmaker,
		"leg_b":       opp.LegB.Outcome + "@" + opp.LegB.Bookmaker,
	}).Info("Arbitrage opportunity found")
}

// LogGroupErrors logs groups skipped because of malformed prices.
func (sl *ScanLogger) LogGroupErrors(sport string, err error) {
	sl.WithFields(logrus.Fields{
		"sport": sport,
	}).WithError(err).Warn("Some price groups were skipped")
}
