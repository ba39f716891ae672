// Package logger provides alert logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// AlertLogger provides dedicated logging for alert delivery.
type AlertLogger struct {
	*logrus.Entry
}

// NewAlertLogger creates a new alert logger.
func NewAlertLogger(baseLogger *logrus.Logger) *AlertLogger {
	return &AlertLogger{
		Entry: baseLogger.WithField("component", "alerts"),
	}
}

// LogAlertSent logs a delivered alert.
func (al *AlertLogger) LogAlertSent(fingerprint, channel string, arbPercent float64) {
	al.WithFields(logrus.Fields{
		"fingerprint": fingerprint,
		"channel":     channel,
		"arb_percent": arbPercent,
	}).Info("Arb alert sent")
}

// LogAlertDuplicate logs an alert suppressed by the dedup ledger.
func (al *AlertLogger) LogAlertDuplicate(fingerprint string) {
	al.WithField("fingerprint", fingerprint).Debug("Arb already alerted, skipping")
}

// LogAlertFailed logs a failed delivery.
func (al *AlertLogger) LogAlertFailed(fingerprint, channel string, err error) {
	al.WithFields(logrus.Fields{
		"fingerprint": fingerprint,
		"channel":     channel,
	}).WithError(err).Error("Failed to send arb alert")
}

// LogAlertsDisabled logs that opportunities exist but no sender is configured.
func (al *AlertLogger) LogAlertsDisabled(opportunities int) {
	al.WithField("opportunities", opportunities).Warn("Arbs found but no webhook is configured, skipping alerts")
}
