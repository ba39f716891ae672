// Package metrics defines scan-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	OpportunitiesFoundTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "opportunities_found_total",
		Help:      "Total number of arbitrage opportunities found, by sport and market",
	}, []string{"sport", "market"})

	ScanGroupErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scan_group_errors_total",
		Help:      "Total number of scans where at least one group had invalid prices",
	}, []string{"sport"})

	BestArbPercent = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "best_arb_percent",
		Help:      "Largest arbitrage margin in the latest scan, as a fraction",
	}, []string{"sport"})

	ScanDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "scan_duration_seconds",
		Help:      "Duration of arbitrage scans in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"sport"})
)

// RecordScan records the outcome of one scan.
func RecordScan(sport string, durationSeconds float64, byMarket map[string]int, best float64, hadGroupErrors bool) {
	ScanDuration.WithLabelValues(sport).Observe(durationSeconds)
	for market, count := range byMarket {
		OpportunitiesFoundTotal.WithLabelValues(sport, market).Add(float64(count))
	}
	BestArbPercent.WithLabelValues(sport).Set(best)
	if hadGroupErrors {
		ScanGroupErrorsTotal.WithLabelValues(sport).Inc()
	}
}
