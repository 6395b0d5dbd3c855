package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveFetch("yahoo", "history", time.Now(), nil)
	m.ObserveFetch("yahoo", "history", time.Now(), errors.New("boom"))
	m.ObserveFetch("yahoo", "history", time.Now(), nil)

	if got := testutil.ToFloat64(m.FetchesTotal.WithLabelValues("yahoo", "history", "ok")); got != 2 {
		t.Errorf("ok fetches = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.FetchesTotal.WithLabelValues("yahoo", "history", "error")); got != 1 {
		t.Errorf("error fetches = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveFetch("yahoo", "quote", time.Now(), nil)
	m.ObserveAnalysis(errors.New("ignored"))
}

func TestServerEndpoints(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	m.ObserveAnalysis(nil)
	health := NewHealth([]string{"AAPL"})
	srv := NewServer(":0", reg, health)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "tickerlens_analyses_total") {
		t.Errorf("metrics output missing analyses counter:\n%s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz code = %d, want 200", rec.Code)
	}

	health.SetRun(time.Now(), errors.New("yahoo down"))
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded healthz code = %d, want 503", rec.Code)
	}
}
