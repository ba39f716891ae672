package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/arb-scanner/internal/metrics"
)

const oddsAPISourceName = "odds_api"

// maxResponseBytes caps how much of a provider response is read
const maxResponseBytes = 32 << 20

// OddsAPIClient fetches live odds from The Odds API v4
type OddsAPIClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	regions    string
	oddsFormat string
	logger     *logrus.Entry
}

// NewOddsAPIClient creates a new Odds API client
func NewOddsAPIClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey, regions, oddsFormat string, logger *logrus.Logger) *OddsAPIClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if regions == "" {
		regions = "us"
	}
	if oddsFormat == "" {
		oddsFormat = "american"
	}
	return &OddsAPIClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		regions:    regions,
		oddsFormat: oddsFormat,
		logger:     logger.WithField("component", oddsAPISourceName),
	}
}

// Name returns the data source name
func (c *OddsAPIClient) Name() string {
	return oddsAPISourceName
}

// FetchOdds retrieves upcoming events for sport with the given markets
func (c *OddsAPIClient) FetchOdds(ctx context.Context, sport string, markets []string) ([]Event, error) {
	if c.apiKey == "" {
		return nil, NewDataSourceError(c.Name(), ErrCodeAuthenticationFailed, "odds API key is not set", ErrAuthenticationFailed)
	}

	reqURL := c.buildURL(sport, markets)
	resp, err := c.httpClient.Get(ctx, reqURL)
	if err != nil {
		metrics.RecordOddsAPIRequest("error")
		return nil, NewDataSourceError(c.Name(), ErrCodeNetworkError, "request failed for "+sport, err)
	}
	defer resp.Body.Close()

	metrics.RecordOddsAPIRequest(strconv.Itoa(resp.StatusCode))

	if quota := parseQuota(resp.Header); quota.Known {
		metrics.UpdateOddsAPIQuota(quota.Remaining, quota.Used)
		c.logger.WithFields(logrus.Fields{
			"sport":     sport,
			"remaining": quota.Remaining,
			"used":      quota.Used,
		}).Info("Odds API call")
	}

	if err := c.checkStatus(resp); err != nil {
		return nil, err
	}

	var events []Event
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&events); err != nil {
		return nil, NewDataSourceError(c.Name(), ErrCodeInvalidData, "failed to decode odds response", err)
	}

	return events, nil
}

func (c *OddsAPIClient) buildURL(sport string, markets []string) string {
	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("markets", strings.Join(markets, ","))
	params.Set("regions", c.regions)
	params.Set("oddsFormat", c.oddsFormat)
	return fmt.Sprintf("%s/sports/%s/odds/?%s", c.baseURL, url.PathEscape(sport), params.Encode())
}

func (c *OddsAPIClient) checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return NewDataSourceError(c.Name(), ErrCodeAuthenticationFailed, "odds API rejected the key", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(c.Name(), ErrCodeRateLimitExceeded, "odds API rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode == http.StatusNotFound:
		return NewDataSourceError(c.Name(), ErrCodeNotFound, "unknown sport", ErrNotFound)
	case resp.StatusCode >= 500:
		return NewDataSourceError(c.Name(), ErrCodeServerError, fmt.Sprintf("status %d", resp.StatusCode), ErrServerError)
	default:
		return NewDataSourceError(c.Name(), ErrCodeUnknown, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}
}

// parseQuota reads x-requests-remaining / x-requests-used; both must parse
func parseQuota(h http.Header) Quota {
	remaining, errR := strconv.Atoi(strings.TrimSpace(h.Get("x-requests-remaining")))
	used, errU := strconv.Atoi(strings.TrimSpace(h.Get("x-requests-used")))
	if errR != nil || errU != nil {
		return Quota{}
	}
	return Quota{Remaining: remaining, Used: used, Known: true}
}
