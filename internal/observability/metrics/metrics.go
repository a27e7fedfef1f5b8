// Package metrics holds the service's Prometheus instrumentation: HTTP
// request accounting plus counters for the document workflows.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	uploadsTotal   prometheus.Counter
	downloadsTotal prometheus.Counter
	searchesTotal  prometheus.Counter
	loginsTotal    *prometheus.CounterVec
	cacheLookups   *prometheus.CounterVec
}

func New(service string) *Metrics {
	registry := prometheus.NewRegistry()

	constLabels := prometheus.Labels{"service": service}

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   "intradocs",
			Subsystem:   "http",
			Name:        "requests_total",
			Help:        "Total HTTP requests processed.",
			ConstLabels: constLabels,
		},
		[]string{"method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   "intradocs",
			Subsystem:   "http",
			Name:        "request_duration_seconds",
			Help:        "HTTP request duration in seconds.",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		},
		[]string{"method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   "intradocs",
			Subsystem:   "http",
			Name:        "in_flight_requests",
			Help:        "Number of in-flight HTTP requests.",
			ConstLabels: constLabels,
		},
	)
	uploadsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "intradocs",
		Subsystem:   "documents",
		Name:        "uploads_total",
		Help:        "Documents uploaded successfully.",
		ConstLabels: constLabels,
	})
	downloadsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "intradocs",
		Subsystem:   "documents",
		Name:        "downloads_total",
		Help:        "Document downloads served.",
		ConstLabels: constLabels,
	})
	searchesTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   "intradocs",
		Subsystem:   "documents",
		Name:        "searches_total",
		Help:        "Document search requests executed.",
		ConstLabels: constLabels,
	})
	loginsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   "intradocs",
		Subsystem:   "auth",
		Name:        "logins_total",
		Help:        "Login attempts by outcome.",
		ConstLabels: constLabels,
	}, []string{"outcome"})
	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   "intradocs",
		Subsystem:   "cache",
		Name:        "lookups_total",
		Help:        "Read-through cache lookups by result.",
		ConstLabels: constLabels,
	}, []string{"result"})

	registry.MustRegister(
		requestTotal, requestDuration, requestInFlight,
		uploadsTotal, downloadsTotal, searchesTotal, loginsTotal, cacheLookups,
	)

	return &Metrics{
		registry:        registry,
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestInFlight: requestInFlight,
		uploadsTotal:    uploadsTotal,
		downloadsTotal:  downloadsTotal,
		searchesTotal:   searchesTotal,
		loginsTotal:     loginsTotal,
		cacheLookups:    cacheLookups,
	}
}

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware instruments requests with the chi route pattern as the path
// label, keeping cardinality bounded.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		m.requestInFlight.Inc()
		defer m.requestInFlight.Dec()

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			path = rctx.RoutePattern()
		}

		m.requestTotal.WithLabelValues(r.Method, path, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

func (m *Metrics) DocumentUploaded() { m.uploadsTotal.Inc() }

func (m *Metrics) DocumentDownloaded() { m.downloadsTotal.Inc() }

func (m *Metrics) SearchPerformed() { m.searchesTotal.Inc() }

func (m *Metrics) LoginAttempt(success bool) {
	outcome := "failure"
	if success {
		outcome = "success"
	}
	m.loginsTotal.WithLabelValues(outcome).Inc()
}

// CacheObserver adapts the cache's lookup hook to the counters.
func (m *Metrics) CacheObserver() func(hit bool) {
	return func(hit bool) {
		result := "miss"
		if hit {
			result = "hit"
		}
		m.cacheLookups.WithLabelValues(result).Inc()
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
