package pricing

import (
	"errors"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/yourusername/arb-scanner/internal/models"
)

// DefaultMinEdge is the smallest margin reported by default (0.2%)
const DefaultMinEdge = 0.002

// DefaultMarkets are the markets scanned when none are configured
var DefaultMarkets = []models.Market{models.MarketH2H, models.MarketSpreads}

// Options configures a Scanner. The value is copied on construction and never mutated.
type Options struct {
	MinEdge    float64
	Markets    []models.Market
	TotalStake float64
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		MinEdge:    DefaultMinEdge,
		Markets:    append([]models.Market(nil), DefaultMarkets...),
		TotalStake: DefaultTotalStake,
	}
}

// WithMinEdge returns a copy of the options with a different edge threshold
func (o Options) WithMinEdge(minEdge float64) Options {
	o.Markets = append([]models.Market(nil), o.Markets...)
	o.MinEdge = minEdge
	return o
}

// WithMarkets returns a copy of the options restricted to the given markets
func (o Options) WithMarkets(markets ...models.Market) Options {
	o.Markets = append([]models.Market(nil), markets...)
	return o
}

// IsValidMinEdge reports whether v can be used as an edge threshold.
// NaN compares false against every margin, so it would admit losing groups.
func IsValidMinEdge(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// Validate checks the options for values the engine cannot work with
func (o Options) Validate() error {
	if !IsValidMinEdge(o.MinEdge) {
		return fmt.Errorf("min edge must be a finite non-negative number, got %v", o.MinEdge)
	}
	if math.IsNaN(o.TotalStake) || math.IsInf(o.TotalStake, 0) || o.TotalStake <= 0 {
		return fmt.Errorf("total stake must be positive, got %v", o.TotalStake)
	}
	if len(o.Markets) == 0 {
		return errors.New("at least one market is required")
	}
	for _, m := range o.Markets {
		if !m.IsKnown() {
			return fmt.Errorf("%w: %q", models.ErrInvalidMarket, m)
		}
	}
	return nil
}

// Scanner runs the full grouping, selection and evaluation pipeline over a snapshot
type Scanner struct {
	opts     Options
	groupers []Grouper
}

// NewScanner creates a scanner for the given options
func NewScanner(opts Options) (*Scanner, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scanner options: %w", err)
	}

	groupers := make([]Grouper, 0, len(opts.Markets))
	for _, m := range opts.Markets {
		g, err := GrouperFor(m)
		if err != nil {
			return nil, err
		}
		groupers = append(groupers, g)
	}

	return &Scanner{
		opts:     opts.WithMinEdge(opts.MinEdge),
		groupers: groupers,
	}, nil
}

// Options returns a copy of the scanner's options
func (s *Scanner) Options() Options {
	return s.opts.WithMinEdge(s.opts.MinEdge)
}

// Scan evaluates every group of every configured market and returns the
// opportunities sorted by ArbPercent descending.
//
// A group containing an invalid price is skipped and its error is joined into
// the returned error; opportunities from all other groups are still returned.
func (s *Scanner) Scan(records []models.PriceRecord) ([]models.ArbOpportunity, error) {
	var groups []Group
	for _, grouper := range s.groupers {
		groups = append(groups, grouper.Group(records)...)
	}

	found := make([]*models.ArbOpportunity, len(groups))
	failures := make([]error, len(groups))

	// Each group writes only its own slot, so output order follows group
	// order regardless of scheduling.
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, group := range groups {
		i, group := i, group
		g.Go(func() error {
			found[i], failures[i] = s.evaluate(group)
			return nil
		})
	}
	_ = g.Wait()

	var opps []models.ArbOpportunity
	var errs []error
	for i := range groups {
		if failures[i] != nil {
			errs = append(errs, failures[i])
			continue
		}
		if found[i] != nil {
			opps = append(opps, *found[i])
		}
	}

	sort.SliceStable(opps, func(i, j int) bool {
		return opps[i].ArbPercent > opps[j].ArbPercent
	})

	return opps, errors.Join(errs...)
}

func (s *Scanner) evaluate(group Group) (*models.ArbOpportunity, error) {
	opp, err := EvaluateTwoSided(EvalInput{
		GameID:     group.GameID,
		CapturedAt: group.CapturedAt(),
		Market:     group.Market,
		Quotes:     SelectBest(group.Records),
		MinEdge:    s.opts.MinEdge,
		TotalStake: s.opts.TotalStake,
	})
	if err != nil {
		return nil, fmt.Errorf("market %s group %s: %w", group.Market, group.Key, err)
	}
	return opp, nil
}
