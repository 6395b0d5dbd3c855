package metrics

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for external fetches and analysis runs.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	FetchesTotal   *prometheus.CounterVec   // labels: provider, kind, outcome
	FetchDuration  *prometheus.HistogramVec // labels: provider, kind
	AnalysesTotal  *prometheus.CounterVec   // labels: outcome
	LastAnalysisAt prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tickerlens_fetches_total",
			Help: "External data fetches by provider, kind and outcome",
		}, []string{"provider", "kind", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tickerlens_fetch_duration_seconds",
			Help:    "Latency of external data fetches",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"provider", "kind"}),
		AnalysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tickerlens_analyses_total",
			Help: "Beta/alpha analysis runs by outcome",
		}, []string{"outcome"}),
		LastAnalysisAt: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tickerlens_last_analysis_timestamp_seconds",
			Help: "Unix time of the last successful analysis run",
		}),
	}
	reg.MustRegister(m.FetchesTotal, m.FetchDuration, m.AnalysesTotal, m.LastAnalysisAt)
	return m
}

// ObserveFetch records one fetch that started at start and finished with err.
func (m *Metrics) ObserveFetch(provider, kind string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.FetchesTotal.WithLabelValues(provider, kind, outcome).Inc()
	m.FetchDuration.WithLabelValues(provider, kind).Observe(time.Since(start).Seconds())
}

// ObserveAnalysis records the outcome of one analysis run.
func (m *Metrics) ObserveAnalysis(err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.AnalysesTotal.WithLabelValues("error").Inc()
		return
	}
	m.AnalysesTotal.WithLabelValues("ok").Inc()
	m.LastAnalysisAt.SetToCurrentTime()
}

// Health reports liveness of the watch daemon.
type Health struct {
	mu           sync.RWMutex
	StartedAt    time.Time `json:"started_at"`
	LastRunAt    time.Time `json:"last_run_at"`
	LastRunError string    `json:"last_run_error,omitempty"`
	Symbols      []string  `json:"symbols"`
}

// NewHealth creates a Health for the given watchlist.
func NewHealth(symbols []string) *Health {
	return &Health{StartedAt: time.Now(), Symbols: symbols}
}

// SetRun records the result of the latest watchlist run.
func (h *Health) SetRun(at time.Time, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.LastRunAt = at
	h.LastRunError = ""
	if err != nil {
		h.LastRunError = err.Error()
	}
}

func (h *Health) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	status := "healthy"
	code := http.StatusOK
	if h.LastRunError != "" {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":         status,
		"started_at":     h.StartedAt,
		"last_run_at":    h.LastRunAt,
		"last_run_error": h.LastRunError,
		"symbols":        h.Symbols,
	})
}

// Server exposes /metrics and /healthz.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates a metrics and health server backed by gatherer.
func NewServer(addr string, gatherer prometheus.Gatherer, health *Health) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	mux.Handle("/healthz", health)
	return &Server{
		addr: addr,
		srv:  &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second},
	}
}

// Handler returns the server's mux.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[INFO] metrics server listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("[ERROR] metrics server: %v", err)
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
