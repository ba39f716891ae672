package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/arb-scanner/internal/datasource"
	"github.com/yourusername/arb-scanner/internal/metrics"
	"github.com/yourusername/arb-scanner/internal/repository"
)

// Cycle stages, used to label failures
const (
	StageFetch = "fetch"
	StageStore = "store"
	StageLoad  = "load"
)

// StageError records which step of a sport's cycle failed
type StageError struct {
	Sport string
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Sport, e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// IngestResult describes one fetched and stored snapshot
type IngestResult struct {
	Sport      string                 `json:"sport"`
	CapturedAt time.Time              `json:"captured_at"`
	Events     int                    `json:"events"`
	Rows       int                    `json:"rows"`
	Rejected   int                    `json:"rejected"`
	Games      int                    `json:"games"`
	Stored     repository.StoreResult `json:"stored"`
}

// IngestionService handles the fetch → normalize → validate → store workflow
type IngestionService struct {
	source     datasource.OddsSource
	store      repository.SnapshotWriter
	validator  *DataValidator
	normalizer *Normalizer
	metrics    *IngestionMetrics
	logger     *logrus.Entry
	now        func() time.Time
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	source datasource.OddsSource,
	store repository.SnapshotWriter,
	validator *DataValidator,
	normalizer *Normalizer,
	logger *logrus.Logger,
) *IngestionService {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if validator == nil {
		validator = NewDataValidator(logger)
	}
	if normalizer == nil {
		normalizer = NewNormalizer(logger)
	}

	return &IngestionService{
		source:     source,
		store:      store,
		validator:  validator,
		normalizer: normalizer,
		metrics:    NewIngestionMetrics(),
		logger:     logger.WithField("component", "ingestion"),
		now:        time.Now,
	}
}

// IngestSport fetches the current odds for one sport and stores them as a
// single snapshot. An empty provider response stores nothing.
func (s *IngestionService) IngestSport(ctx context.Context, sport string, markets []string) (*IngestResult, error) {
	start := time.Now()
	result := &IngestResult{Sport: sport}

	events, err := s.source.FetchOdds(ctx, sport, markets)
	if err != nil {
		s.metrics.RecordError()
		return result, &StageError{Sport: sport, Stage: StageFetch, Err: err}
	}
	result.Events = len(events)

	log := s.logger.WithField("sport", sport)
	log.WithField("events", len(events)).Info("Received events")
	if len(events) == 0 {
		log.Info("No events returned, nothing to store")
		return result, nil
	}

	rows := s.normalizer.Flatten(events)
	result.Rows = len(rows)

	valid, rejected := s.validator.Filter(rows)
	result.Rejected = rejected
	metrics.RecordRowsRejected(rejected)

	result.CapturedAt = s.now().UTC().Truncate(time.Microsecond)
	games, prices := s.normalizer.Prepare(valid, sport, result.CapturedAt)
	result.Games = len(games)
	log.WithFields(logrus.Fields{
		"rows":   len(rows),
		"games":  len(games),
		"prices": len(prices),
	}).Debug("Prepared snapshot")

	stored, err := s.store.Store(ctx, games, prices)
	if err != nil {
		s.metrics.RecordError()
		return result, &StageError{Sport: sport, Stage: StageStore, Err: err}
	}
	result.Stored = stored

	metrics.RecordSnapshotStored(sport, stored.PricesInserted)
	s.metrics.RecordSnapshot(len(events), len(rows), rejected, stored.PricesInserted, time.Since(start))

	log.WithFields(logrus.Fields{
		"games_upserted":  stored.GamesUpserted,
		"prices_inserted": stored.PricesInserted,
		"captured_at":     result.CapturedAt.Format(time.RFC3339),
	}).Info("Stored snapshot")

	return result, nil
}

// GetMetrics returns current ingestion metrics
func (s *IngestionService) GetMetrics() *IngestionMetrics {
	return s.metrics
}

// ResetMetrics resets ingestion metrics
func (s *IngestionService) ResetMetrics() {
	s.metrics.Reset()
}
