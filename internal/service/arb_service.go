package service

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/arb-scanner/internal/alert"
	"github.com/yourusername/arb-scanner/internal/logger"
	"github.com/yourusername/arb-scanner/internal/metrics"
	"github.com/yourusername/arb-scanner/internal/models"
	"github.com/yourusername/arb-scanner/internal/pricing"
	"github.com/yourusername/arb-scanner/internal/repository"
)

// AlertDispatcher delivers opportunities found during a cycle
type AlertDispatcher interface {
	Dispatch(ctx context.Context, opps []models.ArbOpportunity) alert.DispatchResult
}

// SportReport is the outcome of one sport within a cycle
type SportReport struct {
	Sport         string                  `json:"sport"`
	Ingest        *IngestResult           `json:"ingest,omitempty"`
	Records       int                     `json:"records"`
	Opportunities []models.ArbOpportunity `json:"opportunities"`
	Err           error                   `json:"-"`
}

// CycleReport summarises one RunOnce call
type CycleReport struct {
	CycleID   uuid.UUID            `json:"cycle_id"`
	StartedAt time.Time            `json:"started_at"`
	Duration  time.Duration        `json:"duration"`
	Sports    []SportReport        `json:"sports"`
	Alerts    alert.DispatchResult `json:"alerts"`
}

// Opportunities returns every opportunity found in the cycle, in sport order
func (r *CycleReport) Opportunities() []models.ArbOpportunity {
	var all []models.ArbOpportunity
	for _, s := range r.Sports {
		all = append(all, s.Opportunities...)
	}
	return all
}

// Err joins the errors of all failed sports
func (r *CycleReport) Err() error {
	var errs []error
	for _, s := range r.Sports {
		if s.Err != nil {
			errs = append(errs, s.Err)
		}
	}
	return errors.Join(errs...)
}

// ArbService runs the fetch → store → scan → alert pipeline
type ArbService struct {
	ingestion  *IngestionService
	prices     repository.PriceRepository
	scanner    *pricing.Scanner
	dispatcher AlertDispatcher
	sports     []string
	markets    []string
	scanLogger *logger.ScanLogger
	logger     *logrus.Entry
}

// NewArbService creates the worker pipeline for the given sports
func NewArbService(
	ingestion *IngestionService,
	prices repository.PriceRepository,
	scanner *pricing.Scanner,
	dispatcher AlertDispatcher,
	sports []string,
	log *logrus.Logger,
) *ArbService {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}

	opts := scanner.Options()
	markets := make([]string, 0, len(opts.Markets))
	for _, m := range opts.Markets {
		markets = append(markets, string(m))
	}

	return &ArbService{
		ingestion:  ingestion,
		prices:     prices,
		scanner:    scanner,
		dispatcher: dispatcher,
		sports:     append([]string(nil), sports...),
		markets:    markets,
		scanLogger: logger.NewScanLogger(log),
		logger:     log.WithField("component", "arb-service"),
	}
}

// RunOnce executes one cycle over every configured sport. A failing sport is
// logged and recorded in the report; the remaining sports still run. The
// returned error joins all sport failures.
func (s *ArbService) RunOnce(ctx context.Context) (*CycleReport, error) {
	report := &CycleReport{
		CycleID:   uuid.New(),
		StartedAt: time.Now().UTC(),
	}
	log := s.logger.WithField("cycle_id", report.CycleID.String())
	log.WithField("sports", s.sports).Info("Starting arb cycle")

	for _, sport := range s.sports {
		if err := ctx.Err(); err != nil {
			report.Sports = append(report.Sports, SportReport{Sport: sport, Err: err})
			continue
		}

		sr := s.runSport(ctx, sport)
		if sr.Err != nil {
			stage := "unknown"
			var stageErr *StageError
			if errors.As(sr.Err, &stageErr) {
				stage = stageErr.Stage
			}
			metrics.RecordCycleFailure(sport, stage)
			log.WithFields(logrus.Fields{"sport": sport, "stage": stage}).WithError(sr.Err).Error("Sport cycle failed")
		}
		report.Sports = append(report.Sports, sr)
	}

	if opps := report.Opportunities(); len(opps) > 0 && s.dispatcher != nil {
		report.Alerts = s.dispatcher.Dispatch(ctx, opps)
	}

	report.Duration = time.Since(report.StartedAt)
	metrics.RecordCycleCompleted(float64(time.Now().Unix()))

	err := report.Err()
	log.WithFields(logrus.Fields{
		"opportunities": len(report.Opportunities()),
		"alerts_sent":   report.Alerts.Sent,
		"duration_ms":   report.Duration.Milliseconds(),
		"failed":        err != nil,
	}).Info("Arb cycle finished")

	return report, err
}

func (s *ArbService) runSport(ctx context.Context, sport string) SportReport {
	sr := SportReport{Sport: sport}

	ingest, err := s.ingestion.IngestSport(ctx, sport, s.markets)
	sr.Ingest = ingest
	if err != nil {
		sr.Err = err
		return sr
	}
	if ingest.Events == 0 {
		return sr
	}

	records, err := s.prices.GetLatest(ctx, sport)
	if err != nil {
		sr.Err = &StageError{Sport: sport, Stage: StageLoad, Err: err}
		return sr
	}
	sr.Records = len(records)

	opps, elapsed, scanErr := s.scan(sport, records)
	sr.Opportunities = opps

	byMarket := make(map[string]int)
	best := 0.0
	for _, opp := range opps {
		byMarket[string(opp.Market)]++
		if opp.ArbPercent > best {
			best = opp.ArbPercent
		}
		s.scanLogger.LogOpportunity(opp, pricing.Fingerprint(opp))
	}
	metrics.RecordScan(sport, elapsed.Seconds(), byMarket, best, scanErr != nil)

	return sr
}

// scan runs the engine; group errors are logged and never fail the sport
func (s *ArbService) scan(sport string, records []models.PriceRecord) ([]models.ArbOpportunity, time.Duration, error) {
	var capturedAt time.Time
	if len(records) > 0 {
		capturedAt = records[0].CapturedAt
	}
	s.scanLogger.LogScanStarted(sport, capturedAt, len(records))

	start := time.Now()
	opps, err := s.scanner.Scan(records)
	elapsed := time.Since(start)

	if err != nil {
		s.scanLogger.LogGroupErrors(sport, err)
	}
	s.scanLogger.LogScanCompleted(sport, len(opps), elapsed)

	return opps, elapsed, err
}
