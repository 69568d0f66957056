package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService owns the Prometheus registry and every metric the API
// exposes, including the scheduling engine instrumentation.
type MetricsService struct {
	registry *prometheus.Registry

	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec

	cacheOperations *prometheus.CounterVec
	cacheWriteBytes prometheus.Histogram

	dbQueryDuration *prometheus.HistogramVec

	engineRunDuration *prometheus.HistogramVec
	lessonsPlaced     prometheus.Counter
	swapsAccepted     prometheus.Counter
	engineWarnings    *prometheus.CounterVec
}

// NewMetricsService constructs the service with its own registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	s := &MetricsService{
		registry: registry,
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency by method, path and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		cacheOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cache_operations_total",
			Help: "Cache operations by type and outcome.",
		}, []string{"operation", "outcome"}),
		cacheWriteBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cache_write_bytes",
			Help:    "Size of cache payload writes in bytes.",
			Buckets: prometheus.ExponentialBuckets(256, 4, 8),
		}),
		dbQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		engineRunDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "engine_run_duration_seconds",
			Help:    "Scheduling engine run duration by phase.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 15, 60},
		}, []string{"phase"}),
		lessonsPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_lessons_placed_total",
			Help: "Lessons placed across all engine runs.",
		}),
		swapsAccepted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "engine_swaps_accepted_total",
			Help: "Gap-reducing swaps accepted by the optimizer.",
		}),
		engineWarnings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "engine_warnings_total",
			Help: "Engine warnings by kind.",
		}, []string{"kind"}),
	}

	registry.MustRegister(
		s.requestDuration,
		s.requestTotal,
		s.cacheOperations,
		s.cacheWriteBytes,
		s.dbQueryDuration,
		s.engineRunDuration,
		s.lessonsPlaced,
		s.swapsAccepted,
		s.engineWarnings,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "go_active_goroutines",
			Help: "Number of active goroutines.",
		}, func() float64 { return float64(runtime.NumGoroutine()) }),
	)

	return s
}

// Handler exposes the registry for the /metrics endpoint.
func (s *MetricsService) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one completed HTTP request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	code := strconv.Itoa(status)
	s.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	s.requestTotal.WithLabelValues(method, path, code).Inc()
}

// RecordCacheOperation counts a cache hit, miss or error.
func (s *MetricsService) RecordCacheOperation(operation, outcome string) {
	s.cacheOperations.WithLabelValues(operation, outcome).Inc()
}

// ObserveCacheWrite records the payload size of a cache write.
func (s *MetricsService) ObserveCacheWrite(bytes int) {
	s.cacheWriteBytes.Observe(float64(bytes))
}

// ObserveDBQuery records database query latency.
func (s *MetricsService) ObserveDBQuery(operation string, duration time.Duration) {
	s.dbQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// ObserveEngineRun records the duration of one engine phase.
func (s *MetricsService) ObserveEngineRun(phase string, duration time.Duration) {
	s.engineRunDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordEngineResult bumps the placement and optimizer counters after a run.
func (s *MetricsService) RecordEngineResult(placed, acceptedSwaps int) {
	s.lessonsPlaced.Add(float64(placed))
	s.swapsAccepted.Add(float64(acceptedSwaps))
}

// RecordEngineWarning counts one engine warning by kind.
func (s *MetricsService) RecordEngineWarning(kind string) {
	s.engineWarnings.WithLabelValues(kind).Inc()
}
