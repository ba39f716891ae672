// Package scheduler runs the arb cycle on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/arb-scanner/internal/service"
)

// MinInterval is the shortest polling interval accepted
const MinInterval = 5 * time.Second

// CycleRunner runs one fetch → scan → alert cycle
type CycleRunner interface {
	RunOnce(ctx context.Context) (*service.CycleReport, error)
}

// CycleHook observes every finished cycle
type CycleHook func(report *service.CycleReport, err error)

// Scheduler manages the scheduled arb cycle
type Scheduler struct {
	cron     *cron.Cron
	runner   CycleRunner
	logger   *logrus.Entry
	hooks    []CycleHook
	mu       sync.RWMutex
	running  bool
	jobID    cron.EntryID
	interval time.Duration
	baseCtx  context.Context
	cancel   context.CancelFunc
}

// NewScheduler creates a new scheduler. Overlapping runs are skipped.
func NewScheduler(runner CycleRunner, logger *logrus.Logger, hooks ...CycleHook) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	entry := logger.WithField("component", "scheduler")

	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(entry))),
		),
		runner:  runner,
		logger:  entry,
		hooks:   hooks,
		baseCtx: ctx,
		cancel:  cancel,
	}
}

// ScheduleCycle runs the cycle every interval; each run gets a deadline one
// second short of the interval.
func (s *Scheduler) ScheduleCycle(interval time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if s.jobID != 0 {
		return fmt.Errorf("cycle is already scheduled")
	}
	if interval < MinInterval {
		interval = MinInterval
	}

	timeout := interval - time.Second
	entryID, err := s.cron.AddFunc(fmt.Sprintf("@every %ds", int(interval.Seconds())), func() {
		ctx, cancel := context.WithTimeout(s.baseCtx, timeout)
		defer cancel()
		s.RunNow(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobID = entryID
	s.interval = interval
	s.logger.WithField("interval", interval.String()).Info("Scheduled arb cycle")

	return nil
}

// RunNow executes one cycle synchronously and notifies the hooks
func (s *Scheduler) RunNow(ctx context.Context) (*service.CycleReport, error) {
	report, err := s.runner.RunOnce(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("Arb cycle finished with errors")
	}
	for _, hook := range s.hooks {
		hook(report, err)
	}
	return report, err
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}
	if s.jobID == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.running = true
	s.logger.Info("Scheduler started")

	return nil
}

// Stop cancels any in-flight cycle and waits for it to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	s.cancel()
	<-s.cron.Stop().Done()
	s.running = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Interval returns the scheduled interval, or zero before ScheduleCycle
func (s *Scheduler) Interval() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.interval
}

// NextRun returns the time of the next scheduled run
func (s *Scheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running || s.jobID == 0 {
		return time.Time{}
	}
	entry := s.cron.Entry(s.jobID)
	if !entry.Valid() {
		return time.Time{}
	}
	return entry.Next
}
