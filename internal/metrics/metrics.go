package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sattrack_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"path", "method", "code"},
	)

	httpDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sattrack_http_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path", "method"},
	)

	ingestRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sattrack_ingest_runs_total",
			Help: "Ingestion runs by outcome.",
		},
		[]string{"status"},
	)

	ingestDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sattrack_ingest_duration_seconds",
			Help:    "Duration of successful ingestion runs in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	ingestRecordsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sattrack_ingest_records_total",
			Help: "Ingested records by result.",
		},
		[]string{"result"},
	)

	catalogSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sattrack_catalog_size",
			Help: "Number of satellites currently in the catalog.",
		},
	)

	catalogAgeSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sattrack_catalog_age_seconds",
			Help: "Seconds since the most recent catalog update.",
		},
	)

	propagationFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sattrack_propagation_failures_total",
			Help: "Query-time propagation failures (diverged or missing lines).",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpDurationSeconds)
	prometheus.MustRegister(ingestRunsTotal)
	prometheus.MustRegister(ingestDurationSeconds)
	prometheus.MustRegister(ingestRecordsTotal)
	prometheus.MustRegister(catalogSize)
	prometheus.MustRegister(catalogAgeSeconds)
	prometheus.MustRegister(propagationFailuresTotal)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordIngestRun counts a run by outcome ("ok", "fetch_error",
// "no_valid_records") and observes its duration for successful runs.
func RecordIngestRun(status string, durationSeconds float64) {
	ingestRunsTotal.WithLabelValues(status).Inc()
	if status == "ok" {
		ingestDurationSeconds.Observe(durationSeconds)
	}
}

// RecordIngestRecords counts per-record outcomes of one run.
func RecordIngestRecords(upserted, failed int) {
	ingestRecordsTotal.WithLabelValues("upserted").Add(float64(upserted))
	ingestRecordsTotal.WithLabelValues("failed").Add(float64(failed))
}

// SetCatalogSize sets the catalog size gauge.
func SetCatalogSize(n int) {
	catalogSize.Set(float64(n))
}

// SetCatalogAge sets the seconds-since-last-update gauge.
func SetCatalogAge(seconds float64) {
	catalogAgeSeconds.Set(seconds)
}

// RecordPropagationFailure counts one query-time propagation failure.
func RecordPropagationFailure() {
	propagationFailuresTotal.Inc()
}

// normalizeRoute collapses parameterized and unknown paths to keep the path
// label cardinality bounded.
func normalizeRoute(path string) string {
	switch path {
	case "/", "/healthz", "/readyz", "/metrics",
		"/api/v1/refresh", "/api/v1/satellites", "/api/v1/satellites/positions":
		return path
	}
	if strings.HasPrefix(path, "/api/v1/satellites/") {
		rest := path[len("/api/v1/satellites/"):]
		if rest != "" && !strings.Contains(rest, "/") {
			return "/api/v1/satellites/{norad_id}"
		}
	}
	return "other"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Middleware records request count and duration for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		code := strconv.Itoa(rw.statusCode)
		route := normalizeRoute(r.URL.Path)

		httpRequestsTotal.WithLabelValues(route, r.Method, code).Inc()
		httpDurationSeconds.WithLabelValues(route, r.Method).Observe(duration)
	})
}
