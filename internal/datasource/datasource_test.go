package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/arb-scanner/internal/config"
)

const sampleEvents = `[
  {
    "id": "evt-1",
    "sport_key": "basketball_ncaab",
    "commence_time": "2026-03-01T00:00:00Z",
    "home_team": "Duke",
    "away_team": "UNC",
    "bookmakers": [
      {
        "key": "fanduel",
        "title": "FanDuel",
        "markets": [
          {"key": "h2h", "outcomes": [{"name": "Duke", "price": -110}, {"name": "UNC", "price": 105}]},
          {"key": "spreads", "outcomes": [{"name": "Duke", "price": -110, "point": -3.5}, {"name": "UNC", "price": -110, "point": 3.5}]}
        ]
      }
    ]
  }
]`

func fastHTTPConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:             2 * time.Second,
		MaxRetries:          2,
		RetryWaitMin:        time.Millisecond,
		RetryWaitMax:        5 * time.Millisecond,
		RateLimit:           1000,
		CircuitBreakerMax:   5,
		CircuitBreakerReset: time.Minute,
	}
}

func newTestClient(serverURL, apiKey string, cfg HTTPClientConfig) *OddsAPIClient {
	return NewOddsAPIClient(NewRateLimitedHTTPClient(cfg, nil), serverURL, apiKey, "us", "american", nil)
}

func TestFetchOddsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sports/basketball_ncaab/odds/", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("apiKey"))
		assert.Equal(t, "h2h,spreads", q.Get("markets"))
		assert.Equal(t, "us", q.Get("regions"))
		assert.Equal(t, "american", q.Get("oddsFormat"))

		w.Header().Set("x-requests-remaining", "480")
		w.Header().Set("x-requests-used", "20")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleEvents))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "test-key", fastHTTPConfig())
	events, err := client.FetchOdds(context.Background(), "basketball_ncaab", []string{"h2h", "spreads"})
	require.NoError(t, err)
	require.Len(t, events, 1)

	ev := events[0]
	assert.Equal(t, "evt-1", ev.ID)
	assert.Equal(t, "Duke", ev.HomeTeam)
	require.Len(t, ev.Bookmakers, 1)
	require.Len(t, ev.Bookmakers[0].Markets, 2)

	h2h := ev.Bookmakers[0].Markets[0]
	assert.Equal(t, -110.0, h2h.Outcomes[0].Price)
	assert.Nil(t, h2h.Outcomes[0].Point)

	spreads := ev.Bookmakers[0].Markets[1]
	require.NotNil(t, spreads.Outcomes[1].Point)
	assert.Equal(t, 3.5, *spreads.Outcomes[1].Point)
}

func TestFetchOddsMissingAPIKey(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "", fastHTTPConfig())
	_, err := client.FetchOdds(context.Background(), "basketball_nba", []string{"h2h"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeAuthenticationFailed, ErrorCode(err))
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
	assert.Zero(t, atomic.LoadInt32(&hits))
}

func TestFetchOddsStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
	}{
		{"Unauthorized", http.StatusUnauthorized, ErrCodeAuthenticationFailed},
		{"Unknown sport", http.StatusNotFound, ErrCodeNotFound},
		{"Bad request", http.StatusBadRequest, ErrCodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := newTestClient(server.URL, "k", fastHTTPConfig())
			_, err := client.FetchOdds(context.Background(), "basketball_nba", []string{"h2h"})
			require.Error(t, err)
			assert.Equal(t, tt.code, ErrorCode(err))
		})
	}
}

func TestFetchOddsRetriesRateLimit(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "k", fastHTTPConfig())
	events, err := client.FetchOdds(context.Background(), "basketball_nba", []string{"h2h"})
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestFetchOddsRateLimitExhausted(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL, "k", fastHTTPConfig())
	_, err := client.FetchOdds(context.Background(), "basketball_nba", []string{"h2h"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeRateLimitExceeded, ErrorCode(err))
	// MaxRetries=2 means three attempts in total
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestFetchOddsInvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, "k", fastHTTPConfig())
	_, err := client.FetchOdds(context.Background(), "basketball_nba", []string{"h2h"})
	require.Error(t, err)
	assert.Equal(t, ErrCodeInvalidData, ErrorCode(err))
}

func TestCircuitBreakerOpens(t *testing.T) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := fastHTTPConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 2
	httpClient := NewRateLimitedHTTPClient(cfg, nil)

	for i := 0; i < 2; i++ {
		resp, err := httpClient.Get(context.Background(), server.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.True(t, httpClient.IsOpen())

	_, err := httpClient.Get(context.Background(), server.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, int32(2), atomic.LoadInt32(&hits))
}

func TestCircuitBreakerHalfOpenRecovers(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	cfg := fastHTTPConfig()
	cfg.MaxRetries = 0
	cfg.CircuitBreakerMax = 1
	cfg.CircuitBreakerReset = 10 * time.Millisecond
	httpClient := NewRateLimitedHTTPClient(cfg, nil)

	resp, err := httpClient.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	require.True(t, httpClient.IsOpen())

	failing.Store(false)
	time.Sleep(20 * time.Millisecond)

	resp, err = httpClient.Get(context.Background(), server.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.False(t, httpClient.IsOpen())
}

func TestParseQuota(t *testing.T) {
	h := http.Header{}
	assert.False(t, parseQuota(h).Known)

	h.Set("x-requests-remaining", "12")
	assert.False(t, parseQuota(h).Known, "both headers are required")

	h.Set("x-requests-used", "488")
	q := parseQuota(h)
	assert.True(t, q.Known)
	assert.Equal(t, 12, q.Remaining)
	assert.Equal(t, 488, q.Used)
}

func TestFactoryHTTPClientConfig(t *testing.T) {
	cfg := &config.Config{OddsAPI: config.OddsAPIConfig{
		BaseURL:             "https://api.the-odds-api.com/v4",
		APIKey:              "k",
		TimeoutSeconds:      7,
		MaxRetries:          3,
		RetryWaitMinSeconds: 2,
		RetryWaitMaxSeconds: 30,
		RateLimitPerSecond:  0.5,
	}}

	f := NewFactory(cfg, nil)
	httpCfg := f.HTTPClientConfig()
	assert.Equal(t, 7*time.Second, httpCfg.Timeout)
	assert.Equal(t, 3, httpCfg.MaxRetries)
	assert.Equal(t, 2*time.Second, httpCfg.RetryWaitMin)
	assert.Equal(t, 30*time.Second, httpCfg.RetryWaitMax)
	assert.Equal(t, 0.5, httpCfg.RateLimit)

	src, err := f.NewOddsSource()
	require.NoError(t, err)
	assert.Equal(t, "odds_api", src.Name())
}

func TestFactoryRequiresBaseURL(t *testing.T) {
	_, err := NewFactory(&config.Config{}, nil).NewOddsSource()
	assert.Error(t, err)
}
