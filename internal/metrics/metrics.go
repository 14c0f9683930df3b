// Package metrics exposes Prometheus telemetry for the HTTP API, uploads and
// the orphan sweeper.
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shelf"

var labelNames = []string{"method", "route", "status"}

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	requestDurations *prometheus.HistogramVec
	requestBytes     *prometheus.CounterVec
	responseBytes    *prometheus.CounterVec

	uploads        *prometheus.CounterVec
	compensations  *prometheus.CounterVec
	orphansRemoved prometheus.Counter
}

// New creates and registers every collector.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestDurations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Time spent answering HTTP requests.",
				Buckets:   prometheus.DefBuckets,
			},
			labelNames,
		),
		requestBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "request_bytes_total",
				Help:      "Total volume of request payloads received in bytes.",
			},
			labelNames,
		),
		responseBytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "response_bytes_total",
				Help:      "Total volume of response payloads emitted in bytes.",
			},
			labelNames,
		),
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_total",
				Help:      "Book uploads by result (ok, invalid, failed).",
			},
			[]string{"result"},
		),
		compensations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "upload_compensations_total",
				Help:      "Staged blobs deleted after a failed upload.",
			},
			[]string{"bucket"},
		),
		orphansRemoved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "orphans_removed_total",
				Help:      "Unreferenced blobs deleted by the orphan sweeper.",
			},
		),
	}

	m.registry.MustRegister(
		m.requestDurations,
		m.requestBytes,
		m.responseBytes,
		m.uploads,
		m.compensations,
		m.orphansRemoved,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records duration and payload sizes per route pattern. It must be
// mounted on the root chi router so the matched pattern is known afterwards.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rc := &responseCounter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rc, r)

		labels := prometheus.Labels{
			"method": strings.ToLower(r.Method),
			"route":  routePattern(r),
			"status": strconv.Itoa(rc.status),
		}
		m.requestDurations.With(labels).Observe(time.Since(start).Seconds())
		if r.ContentLength > 0 {
			m.requestBytes.With(labels).Add(float64(r.ContentLength))
		}
		m.responseBytes.With(labels).Add(float64(rc.size))
	})
}

// ObserveUpload counts a finished upload.
func (m *Metrics) ObserveUpload(result string) {
	m.uploads.WithLabelValues(result).Inc()
}

// BlobCompensated counts a staged blob removed after a failed upload.
func (m *Metrics) BlobCompensated(bucket string) {
	m.compensations.WithLabelValues(bucket).Inc()
}

// OrphansRemoved counts blobs deleted by one sweep.
func (m *Metrics) OrphansRemoved(n int) {
	m.orphansRemoved.Add(float64(n))
}

// routePattern keeps label cardinality bounded: unmatched paths share one label.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

type responseCounter struct {
	http.ResponseWriter
	status int
	size   int64
}

func (rc *responseCounter) WriteHeader(code int) {
	rc.status = code
	rc.ResponseWriter.WriteHeader(code)
}

func (rc *responseCounter) Write(b []byte) (int, error) {
	n, err := rc.ResponseWriter.Write(b)
	rc.size += int64(n)
	return n, err
}
