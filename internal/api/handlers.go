package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/yourusername/arb-scanner/internal/models"
	"github.com/yourusername/arb-scanner/internal/pricing"
)

const (
	defaultOddsLimit = 200
	maxOddsLimit     = 5000
)

// ErrorResponse is the body of every non-2xx reply
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// PriceItem is one row of /odds/latest
type PriceItem struct {
	GameID       string   `json:"game_id"`
	Bookmaker    string   `json:"bookmaker"`
	Market       string   `json:"market"`
	Outcome      string   `json:"outcome"`
	Line         *float64 `json:"line"`
	OddsAmerican *int     `json:"odds_american"`
}

// OddsResponse is the body of /odds/latest
type OddsResponse struct {
	Sport      string      `json:"sport"`
	CapturedAt *time.Time  `json:"captured_at"`
	Total      int         `json:"total"`
	Count      int         `json:"count"`
	Prices     []PriceItem `json:"prices"`
}

// LegItem is one side of an arb in /arbs/latest
type LegItem struct {
	Outcome      string   `json:"outcome"`
	Bookmaker    string   `json:"bookmaker"`
	OddsAmerican int      `json:"odds_american"`
	ImpliedProb  float64  `json:"implied_prob"`
	Line         *float64 `json:"line,omitempty"`
}

// ArbItem is one opportunity in /arbs/latest. Percentages are in percent.
type ArbItem struct {
	Sport                  string             `json:"sport"`
	GameID                 string             `json:"game_id"`
	Market                 string             `json:"market"`
	CapturedAt             time.Time          `json:"captured_at"`
	ArbPercent             float64            `json:"arb_percent"`
	GuaranteedProfitPer100 float64            `json:"guaranteed_profit_per_100"`
	LegA                   LegItem            `json:"leg_a"`
	LegB                   LegItem            `json:"leg_b"`
	Stakes100              map[string]float64 `json:"stakes_100"`
	Fingerprint            string             `json:"fingerprint"`
}

// ArbsResponse is the body of /arbs/latest
type ArbsResponse struct {
	Count int       `json:"count"`
	Arbs  []ArbItem `json:"arbs"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.db != nil {
		if err := s.db.Ping(ctx); err != nil {
			s.respondError(w, http.StatusServiceUnavailable, "database unhealthy", err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOddsLatest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	q := r.URL.Query()
	sport := q.Get("sport")
	if sport == "" {
		s.respondError(w, http.StatusBadRequest, "sport is required", nil)
		return
	}
	limit, err := intParam(q.Get("limit"), defaultOddsLimit, 1, maxOddsLimit)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "limit: "+err.Error(), nil)
		return
	}
	offset, err := intParam(q.Get("offset"), 0, 0, -1)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "offset: "+err.Error(), nil)
		return
	}

	resp := OddsResponse{Sport: sport, Prices: []PriceItem{}}

	capturedAt, err := s.prices.GetLatestCapturedAt(ctx, sport)
	if errors.Is(err, models.ErrNotFound) {
		respondJSON(w, http.StatusOK, resp)
		return
	}
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load latest snapshot", err)
		return
	}

	records, err := s.prices.GetSnapshot(ctx, sport, capturedAt)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to load prices", err)
		return
	}

	game, book, market := q.Get("game"), q.Get("book"), q.Get("market")
	filtered := make([]models.PriceRecord, 0, len(records))
	for _, rec := range records {
		if game != "" && rec.GameID != game {
			continue
		}
		if book != "" && rec.Bookmaker != book {
			continue
		}
		if market != "" && string(rec.Market) != market {
			continue
		}
		filtered = append(filtered, rec)
	}

	resp.CapturedAt = &capturedAt
	resp.Total = len(filtered)
	if offset < len(filtered) {
		end := offset + limit
		if end > len(filtered) {
			end = len(filtered)
		}
		for _, rec := range filtered[offset:end] {
			resp.Prices = append(resp.Prices, PriceItem{
				GameID:       rec.GameID,
				Bookmaker:    rec.Bookmaker,
				Market:       string(rec.Market),
				Outcome:      rec.Outcome,
				Line:         rec.Line,
				OddsAmerican: rec.OddsAmerican,
			})
		}
	}
	resp.Count = len(resp.Prices)

	respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleArbsLatest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	q := r.URL.Query()
	opts := s.scanOpts.WithMinEdge(s.scanOpts.MinEdge)

	if raw := q.Get("min_edge"); raw != "" {
		minEdge, err := strconv.ParseFloat(raw, 64)
		if err != nil || !pricing.IsValidMinEdge(minEdge) {
			s.respondError(w, http.StatusBadRequest, "min_edge must be a finite non-negative number", nil)
			return
		}
		opts = opts.WithMinEdge(minEdge)
	}
	if raw := q.Get("market"); raw != "" {
		market := models.Market(raw)
		if !market.IsKnown() {
			s.respondError(w, http.StatusBadRequest, fmt.Sprintf("unknown market %q", raw), nil)
			return
		}
		opts = opts.WithMarkets(market)
	}

	scanner, err := pricing.NewScanner(opts)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	sports := s.sports
	if sport := q.Get("sport"); sport != "" {
		sports = []string{sport}
	}

	items := []ArbItem{}
	for _, sport := range sports {
		opps, err := s.latestArbs(ctx, sport, scanner)
		if err != nil {
			s.respondError(w, http.StatusInternalServerError, "failed to scan "+sport, err)
			return
		}
		for _, opp := range opps {
			items = append(items, toArbItem(sport, opp))
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ArbPercent > items[j].ArbPercent
	})

	respondJSON(w, http.StatusOK, ArbsResponse{Count: len(items), Arbs: items})
}

// latestArbs scans the newest snapshot of a sport, caching per
// (sport, captured_at, options).
func (s *Server) latestArbs(ctx context.Context, sport string, scanner *pricing.Scanner) ([]models.ArbOpportunity, error) {
	capturedAt, err := s.prices.GetLatestCapturedAt(ctx, sport)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	key := cacheKey(sport, capturedAt, scanner.Options())
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]models.ArbOpportunity), nil
	}

	records, err := s.prices.GetSnapshot(ctx, sport, capturedAt)
	if err != nil {
		return nil, err
	}

	opps, scanErr := scanner.Scan(records)
	if scanErr != nil {
		s.logger.WithField("sport", sport).WithError(scanErr).Warn("Some price groups were skipped")
	}

	s.cache.Set(key, opps, cache.DefaultExpiration)
	return opps, nil
}

func cacheKey(sport string, capturedAt time.Time, opts pricing.Options) string {
	markets := make([]string, len(opts.Markets))
	for i, m := range opts.Markets {
		markets[i] = string(m)
	}
	return fmt.Sprintf("%s|%d|%s|%s",
		sport,
		capturedAt.UnixNano(),
		strconv.FormatFloat(opts.MinEdge, 'g', -1, 64),
		strings.Join(markets, ","),
	)
}

func toArbItem(sport string, opp models.ArbOpportunity) ArbItem {
	percent := decimal.NewFromFloat(opp.ArbPercent).Mul(decimal.NewFromInt(100)).Round(2).InexactFloat64()
	return ArbItem{
		Sport:                  sport,
		GameID:                 opp.GameID,
		Market:                 string(opp.Market),
		CapturedAt:             opp.CapturedAt,
		ArbPercent:             percent,
		GuaranteedProfitPer100: percent,
		LegA:                   toLegItem(opp.LegA),
		LegB:                   toLegItem(opp.LegB),
		Stakes100:              opp.Stakes,
		Fingerprint:            pricing.Fingerprint(opp),
	}
}

func toLegItem(leg models.BestLeg) LegItem {
	return LegItem{
		Outcome:      leg.Outcome,
		Bookmaker:    leg.Bookmaker,
		OddsAmerican: leg.OddsAmerican,
		ImpliedProb:  leg.ImpliedProb,
		Line:         leg.Line,
	}
}

// intParam parses an optional integer bounded by [lo, hi]; hi < 0 means unbounded
func intParam(raw string, def, lo, hi int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if hi >= 0 && (v < lo || v > hi) {
		return 0, fmt.Errorf("must be between %d and %d", lo, hi)
	}
	if v < lo {
		return 0, fmt.Errorf("must be at least %d", lo)
	}
	return v, nil
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		s.logger.WithError(err).Error(message)
	}
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
