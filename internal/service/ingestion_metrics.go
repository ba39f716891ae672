package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks running totals across ingestion runs
type IngestionMetrics struct {
	mu             sync.RWMutex
	StartTime      time.Time
	Duration       time.Duration
	Snapshots      int
	Events         int
	Rows           int
	Rejected       int
	PricesInserted int64
	Errors         int
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *IngestionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.Snapshots = 0
	m.Events = 0
	m.Rows = 0
	m.Rejected = 0
	m.PricesInserted = 0
	m.Errors = 0
}

// RecordSnapshot adds one stored snapshot to the totals
func (m *IngestionMetrics) RecordSnapshot(events, rows, rejected int, inserted int64, took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshots++
	m.Events += events
	m.Rows += rows
	m.Rejected += rejected
	m.PricesInserted += inserted
	m.Duration += took
}

// RecordError increments error count
func (m *IngestionMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// Snapshot returns a copy of the counters
func (m *IngestionMetrics) Snapshot() IngestionTotals {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return IngestionTotals{
		Snapshots:      m.Snapshots,
		Events:         m.Events,
		Rows:           m.Rows,
		Rejected:       m.Rejected,
		PricesInserted: m.PricesInserted,
		Errors:         m.Errors,
		Duration:       m.Duration,
	}
}

// IngestionTotals is a lock-free copy of IngestionMetrics
type IngestionTotals struct {
	Snapshots      int
	Events         int
	Rows           int
	Rejected       int
	PricesInserted int64
	Errors         int
	Duration       time.Duration
}

// String returns a formatted string representation of metrics
func (m *IngestionMetrics) String() string {
	t := m.Snapshot()

	acceptRate := float64(0)
	if t.Rows > 0 {
		acceptRate = float64(t.Rows-t.Rejected) / float64(t.Rows) * 100
	}

	return fmt.Sprintf(
		"IngestionMetrics{Snapshots=%d, Events=%d, Rows=%d (%.1f%% accepted), Inserted=%d, Errors=%d, Duration=%v}",
		t.Snapshots,
		t.Events,
		t.Rows,
		acceptRate,
		t.PricesInserted,
		t.Errors,
		t.Duration,
	)
}
