package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDB struct{ err error }

func (f fakeDB) Ping(context.Context) error { return f.err }

func serve(s *Server, path string) (*httptest.ResponseRecorder, ReadyResponse) {
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var body ReadyResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	return rec, body
}

func TestHealthAndLive(t *testing.T) {
	s := NewServer(Config{ServiceName: "arb-worker"})

	rec, body := serve(s, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "arb-worker", body.Service)

	rec, _ = serve(s, "/live")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyRequiresFlag(t *testing.T) {
	s := NewServer(Config{ServiceName: "arb-worker"})

	rec, body := serve(s, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", body.Checks["service"])

	s.SetReady(true)
	rec, _ = serve(s, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyChecksDatabase(t *testing.T) {
	s := NewServer(Config{DB: fakeDB{err: errors.New("connection refused")}})
	s.SetReady(true)

	rec, body := serve(s, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, body.Checks["database"], "connection refused")
}

func TestReadyCycleFreshness(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewServer(Config{MaxCycleAge: time.Minute})
	s.now = func() time.Time { return now }
	s.SetReady(true)

	rec, body := serve(s, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pending", body.Checks["cycle"])

	s.RecordCycle(now.Add(-30*time.Second), errors.New("basketball_nba: fetch failed"))
	rec, body = serve(s, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "degraded", body.Checks["cycle"])
	require.NotEmpty(t, body.LastCycle)

	s.RecordCycle(now.Add(-2*time.Minute), nil)
	rec, body = serve(s, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "stale", body.Checks["cycle"])
}

func TestMetricsRoute(t *testing.T) {
	s := NewServer(Config{
		MetricsPath: "/metrics",
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("ok"))
		}),
	})
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
