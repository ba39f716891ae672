// Package metrics defines alert delivery metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	AlertsSentTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_sent_total",
		Help:      "Total number of alerts delivered, by channel",
	}, []string{"channel"})

	AlertsDeduplicatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_deduplicated_total",
		Help:      "Total number of alerts suppressed because the fingerprint was already sent",
	})

	AlertsFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "alerts_failed_total",
		Help:      "Total number of failed alert deliveries, by channel",
	}, []string{"channel"})
)

// RecordAlertSent records a delivered alert.
func RecordAlertSent(channel string) {
	AlertsSentTotal.WithLabelValues(channel).Inc()
}

// RecordAlertDeduplicated records a suppressed duplicate.
func RecordAlertDeduplicated() {
	AlertsDeduplicatedTotal.Inc()
}

// RecordAlertFailed records a failed delivery.
func RecordAlertFailed(channel string) {
	AlertsFailedTotal.WithLabelValues(channel).Inc()
}
