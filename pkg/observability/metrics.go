package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. A nil *Metrics is valid and records
// nothing, so components can be built without a registry.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// G2P registry metrics
	G2PFactories        prometheus.Gauge
	G2PRegistryOpsTotal *prometheus.CounterVec
	G2PLookupsTotal     *prometheus.CounterVec

	// Conversion metrics
	ConversionsTotal   *prometheus.CounterVec
	ConversionDuration *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langmgr_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "langmgr_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		G2PFactories: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "langmgr_g2p_factories",
				Help: "Number of registered G2P factories",
			},
		),
		G2PRegistryOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langmgr_g2p_registry_operations_total",
				Help: "Total number of G2P registry mutations",
			},
			[]string{"operation", "result"},
		),
		G2PLookupsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langmgr_g2p_lookups_total",
				Help: "Total number of G2P factory lookups",
			},
			[]string{"result"},
		),

		ConversionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langmgr_conversions_total",
				Help: "Total number of language conversions",
			},
			[]string{"language", "status"},
		),
		ConversionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "langmgr_conversion_duration_seconds",
				Help:    "Language conversion duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"language"},
		),

		CacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langmgr_cache_hits_total",
				Help: "Total number of conversion cache hits",
			},
			[]string{"backend"},
		),
		CacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "langmgr_cache_misses_total",
				Help: "Total number of conversion cache misses",
			},
			[]string{"backend"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.G2PFactories,
		m.G2PRegistryOpsTotal,
		m.G2PLookupsTotal,
		m.ConversionsTotal,
		m.ConversionDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// SetG2PFactories records the current registry size
func (m *Metrics) SetG2PFactories(n int) {
	if m == nil {
		return
	}
	m.G2PFactories.Set(float64(n))
}

// RecordG2PRegistryOp counts a registry mutation and its outcome
func (m *Metrics) RecordG2PRegistryOp(operation, result string) {
	if m == nil {
		return
	}
	m.G2PRegistryOpsTotal.WithLabelValues(operation, result).Inc()
}

// RecordG2PLookup counts a factory lookup
func (m *Metrics) RecordG2PLookup(found bool) {
	if m == nil {
		return
	}
	result := "miss"
	if found {
		result = "hit"
	}
	m.G2PLookupsTotal.WithLabelValues(result).Inc()
}

// RecordConversion counts a language conversion and observes its duration
func (m *Metrics) RecordConversion(language, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.ConversionsTotal.WithLabelValues(language, status).Inc()
	m.ConversionDuration.WithLabelValues(language).Observe(d.Seconds())
}

// RecordCacheHit counts a cache hit for backend
func (m *Metrics) RecordCacheHit(backend string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(backend).Inc()
}

// RecordCacheMiss counts a cache miss for backend
func (m *Metrics) RecordCacheMiss(backend string) {
	if m == nil {
		return
	}
	m.CacheMissesTotal.WithLabelValues(backend).Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// HTTPMetricsMiddleware instruments HTTP requests with Prometheus metrics.
// pathLabel maps a request to a low-cardinality label, e.g. a route template.
func HTTPMetricsMiddleware(metrics *Metrics, pathLabel func(*http.Request) string) func(http.Handler) http.Handler {
	if pathLabel == nil {
		pathLabel = func(r *http.Request) string { return r.URL.Path }
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if metrics == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			path := pathLabel(r)
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rw.statusCode)).Inc()
			metrics.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// MetricsHandler serves the registry in the Prometheus exposition format
func MetricsHandler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
