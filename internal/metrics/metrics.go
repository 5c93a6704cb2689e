// Package metrics exposes Prometheus instrumentation for the pipeline.
// Collectors are package-level so any layer can record without plumbing
// a registry through every constructor.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wltsai/stockpulse/pkg/logger"
)

var (
	queriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockpulse_queries_total",
		Help: "Pipeline executions by delivery mode.",
	}, []string{"mode"})

	providerFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockpulse_provider_fetch_total",
		Help: "Source adapter fetches by provider and outcome.",
	}, []string{"provider", "outcome"})

	providerFetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stockpulse_provider_fetch_duration_seconds",
		Help:    "Source adapter fetch latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})

	evalTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "stockpulse_evaluations_total",
		Help: "Event evaluations by path (llm, fallback, cache, overflow).",
	}, []string{"path"})

	evalDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "stockpulse_evaluation_duration_seconds",
		Help:    "Per-event scoring latency, cache hits excluded.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
	})

	cacheEntries = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stockpulse_judgment_cache_entries",
		Help: "Current judgment cache size.",
	})

	streamClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "stockpulse_stream_clients",
		Help: "Currently connected incremental-delivery clients.",
	})
)

func init() {
	prometheus.MustRegister(
		queriesTotal,
		providerFetchTotal,
		providerFetchDuration,
		evalTotal,
		evalDuration,
		cacheEntries,
		streamClients,
	)
}

// CountQuery records one pipeline execution
func CountQuery(mode string) {
	queriesTotal.WithLabelValues(mode).Inc()
}

// ObserveProviderFetch records one source adapter call
func ObserveProviderFetch(provider string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	providerFetchTotal.WithLabelValues(provider, outcome).Inc()
	providerFetchDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// CountEvaluation records one evaluation by path
func CountEvaluation(path string) {
	evalTotal.WithLabelValues(path).Inc()
}

// ObserveEvaluation records scoring latency
func ObserveEvaluation(d time.Duration) {
	evalDuration.Observe(d.Seconds())
}

// SetCacheEntries updates the judgment cache size gauge
func SetCacheEntries(n int) {
	cacheEntries.Set(float64(n))
}

// StreamClientConnected tracks one incremental client
func StreamClientConnected() {
	streamClients.Inc()
}

// StreamClientDisconnected tracks one incremental client going away
func StreamClientDisconnected() {
	streamClients.Dec()
}

// Server serves the /metrics endpoint on its own port
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
}

// NewServer creates the metrics HTTP server
func NewServer(port string, log *logger.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + port,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: log,
	}
}

// Start starts serving metrics
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting metrics server")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops the metrics server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
