// Package metrics provides centralized Prometheus metrics registry for the arb scanner.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "arb_scanner"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	SnapshotsIngestedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_ingested_total",
		Help:      "Total number of odds snapshots stored, by sport",
	}, []string{"sport"})
	PricesStoredTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prices_stored_total",
		Help:      "Total number of price rows inserted, by sport",
	}, []string{"sport"})
	RowsRejectedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rows_rejected_total",
		Help:      "Total number of provider rows dropped by validation",
	})
	CycleFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cycle_failures_total",
		Help:      "Total number of failed sport cycles, by sport and stage",
	}, []string{"sport", "stage"})
	OddsAPIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "odds_api_requests_total",
		Help:      "Total number of odds provider requests, by status",
	}, []string{"status"})
	CircuitBreakerTripsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "circuit_breaker_trips_total",
		Help:      "Total number of HTTP circuit breaker trips",
	})
)

// Gauge metrics
var (
	OddsAPIRequestsRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "odds_api_requests_remaining",
		Help:      "Request quota remaining as reported by the odds provider",
	})
	OddsAPIRequestsUsed = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "odds_api_requests_used",
		Help:      "Requests used as reported by the odds provider",
	})
	LastCycleTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_cycle_timestamp_seconds",
		Help:      "Unix time of the last completed worker cycle",
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register ingestion metrics
		registry.MustRegister(SnapshotsIngestedTotal)
		registry.MustRegister(PricesStoredTotal)
		registry.MustRegister(RowsRejectedTotal)
		registry.MustRegister(CycleFailuresTotal)
		registry.MustRegister(OddsAPIRequestsTotal)
		registry.MustRegister(CircuitBreakerTripsTotal)
		registry.MustRegister(OddsAPIRequestsRemaining)
		registry.MustRegister(OddsAPIRequestsUsed)
		registry.MustRegister(LastCycleTimestamp)

		// Register scan metrics
		registry.MustRegister(OpportunitiesFoundTotal)
		registry.MustRegister(ScanGroupErrorsTotal)
		registry.MustRegister(BestArbPercent)
		registry.MustRegister(ScanDuration)

		// Register alert metrics
		registry.MustRegister(AlertsSentTotal)
		registry.MustRegister(AlertsDeduplicatedTotal)
		registry.MustRegister(AlertsFailedTotal)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSnapshotStored records a stored snapshot and its inserted rows.
func RecordSnapshotStored(sport string, pricesInserted int64) {
	SnapshotsIngestedTotal.WithLabelValues(sport).Inc()
	PricesStoredTotal.WithLabelValues(sport).Add(float64(pricesInserted))
}

// RecordRowsRejected records provider rows dropped by validation.
func RecordRowsRejected(count int) {
	RowsRejectedTotal.Add(float64(count))
}

// RecordCycleFailure records a failed stage of a sport cycle.
func RecordCycleFailure(sport, stage string) {
	CycleFailuresTotal.WithLabelValues(sport, stage).Inc()
}

// RecordOddsAPIRequest records a provider request outcome.
func RecordOddsAPIRequest(status string) {
	OddsAPIRequestsTotal.WithLabelValues(status).Inc()
}

// UpdateOddsAPIQuota updates the provider quota gauges.
func UpdateOddsAPIQuota(remaining, used int) {
	OddsAPIRequestsRemaining.Set(float64(remaining))
	OddsAPIRequestsUsed.Set(float64(used))
}

// RecordCircuitBreakerTrip records a circuit breaker trip event.
func RecordCircuitBreakerTrip() {
	CircuitBreakerTripsTotal.Inc()
}

// RecordCycleCompleted stamps the completion time of a worker cycle.
func RecordCycleCompleted(unixSeconds float64) {
	LastCycleTimestamp.Set(unixSeconds)
}
