// Package metrics provides Prometheus metrics for mediaweb.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP front-end
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaweb_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediaweb_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Backend index
	indexFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaweb_index_fetch_total",
			Help: "Index fetches by outcome",
		},
		[]string{"outcome"},
	)

	indexFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediaweb_index_fetch_duration_seconds",
			Help:    "Index fetch duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Client navigation
	navigationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaweb_navigations_total",
			Help: "Completed router navigations",
		},
		[]string{"source"},
	)

	linkDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaweb_link_decisions_total",
			Help: "Anchor click classifications",
		},
		[]string{"decision"},
	)

	staleResultsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediaweb_stale_results_total",
			Help: "Fetch results dropped because their view moved on",
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordHTTPRequest records an HTTP request metric.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordIndexFetch records one index fetch and its outcome.
func RecordIndexFetch(outcome string, duration time.Duration) {
	indexFetchTotal.WithLabelValues(outcome).Inc()
	indexFetchDuration.Observe(duration.Seconds())
}

// RecordNavigation records a completed navigation.
func RecordNavigation(source string) {
	navigationsTotal.WithLabelValues(source).Inc()
}

// RecordLinkDecision records how a clicked anchor was classified.
func RecordLinkDecision(decision string) {
	linkDecisionsTotal.WithLabelValues(decision).Inc()
}

// RecordStaleResult records a dropped fetch result.
func RecordStaleResult() {
	staleResultsTotal.Inc()
}

// responseWriter wraps http.ResponseWriter to capture status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

// Middleware records request metrics. routeOf maps a request onto a
// low-cardinality route label.
func Middleware(routeOf func(*http.Request) string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)
		RecordHTTPRequest(r.Method, routeOf(r), rw.statusCode, time.Since(start))
	})
}
