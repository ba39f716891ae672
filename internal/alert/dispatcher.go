package alert

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/arb-scanner/internal/logger"
	"github.com/yourusername/arb-scanner/internal/metrics"
	"github.com/yourusername/arb-scanner/internal/models"
	"github.com/yourusername/arb-scanner/internal/pricing"
)

// DispatchResult counts what happened to each opportunity in one Dispatch call
type DispatchResult struct {
	Sent       int `json:"sent"`
	Duplicates int `json:"duplicates"`
	Failed     int `json:"failed"`
	Skipped    int `json:"skipped"`
}

// Dispatcher sends each new opportunity once, tracked by fingerprint
type Dispatcher struct {
	sender    Sender
	ledger    Ledger
	publisher Publisher
	logger    *logger.AlertLogger
	now       func() time.Time
}

// DispatcherOption configures optional Dispatcher collaborators
type DispatcherOption func(*Dispatcher)

// WithPublisher broadcasts every successfully alerted opportunity
func WithPublisher(p Publisher) DispatcherOption {
	return func(d *Dispatcher) {
		d.publisher = p
	}
}

// NewDispatcher creates a dispatcher. A nil sender disables delivery.
func NewDispatcher(sender Sender, ledger Ledger, log *logrus.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		sender: sender,
		ledger: ledger,
		logger: logger.NewAlertLogger(log),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch alerts every opportunity whose fingerprint is not in the ledger.
// A fingerprint is marked only after delivery succeeds, so failed sends are
// retried on the next call.
func (d *Dispatcher) Dispatch(ctx context.Context, opps []models.ArbOpportunity) DispatchResult {
	var result DispatchResult
	if len(opps) == 0 {
		return result
	}

	if d.sender == nil {
		d.logger.LogAlertsDisabled(len(opps))
		result.Skipped = len(opps)
		return result
	}

	if pruner, ok := d.ledger.(Pruner); ok {
		if n, err := pruner.Prune(ctx); err != nil {
			d.logger.WithError(err).Warn("Failed to prune alert ledger")
		} else if n > 0 {
			d.logger.WithField("pruned", n).Debug("Pruned expired alert fingerprints")
		}
	}

	channel := d.sender.Channel()
	for _, opp := range opps {
		if ctx.Err() != nil {
			result.Skipped++
			continue
		}

		fp := pricing.Fingerprint(opp)

		sent, err := d.ledger.IsSent(ctx, fp)
		if err != nil {
			d.logger.LogAlertFailed(fp, channel, err)
			metrics.RecordAlertFailed(channel)
			result.Failed++
			continue
		}
		if sent {
			d.logger.LogAlertDuplicate(fp)
			metrics.RecordAlertDeduplicated()
			result.Duplicates++
			continue
		}

		if err := d.sender.Send(ctx, FormatArbMessage(opp)); err != nil {
			d.logger.LogAlertFailed(fp, channel, err)
			metrics.RecordAlertFailed(channel)
			result.Failed++
			continue
		}

		if err := d.ledger.MarkSent(ctx, fp); err != nil {
			// Delivered but not recorded; the next cycle may alert it again
			d.logger.WithError(err).WithField("fingerprint", fp).Error("Failed to record sent alert")
		}
		d.logger.LogAlertSent(fp, channel, opp.ArbPercent)
		metrics.RecordAlertSent(channel)
		result.Sent++

		if d.publisher != nil {
			event := Event{Fingerprint: fp, Opportunity: opp, PublishedAt: d.now().UTC()}
			if err := d.publisher.Publish(ctx, event); err != nil {
				d.logger.WithError(err).WithField("fingerprint", fp).Warn("Failed to publish alert event")
			}
		}
	}

	return result
}
