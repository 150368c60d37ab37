package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects Prometheus metrics for the dashboard service.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	statusChanges   *prometheus.CounterVec
	deletions       *prometheus.CounterVec
	exports         *prometheus.CounterVec
	assistantDrafts *prometheus.CounterVec
}

// NewMetrics initialises the registry with HTTP and domain metrics.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qazi_http_requests_total",
		Help: "HTTP requests by route and status code.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qazi_http_request_duration_seconds",
		Help:    "HTTP request duration per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	statusChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qazi_order_status_changes_total",
		Help: "Order status changes by target status.",
	}, []string{"status"})
	deletions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qazi_deletions_total",
		Help: "Confirmed deletions by entity.",
	}, []string{"entity"})
	exports := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qazi_exports_total",
		Help: "Generated exports by kind.",
	}, []string{"kind"})
	drafts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "qazi_assistant_drafts_total",
		Help: "Assistant order drafts by outcome.",
	}, []string{"outcome"})
	registry.MustRegister(requests, duration, statusChanges, deletions, exports, drafts)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		statusChanges:   statusChanges,
		deletions:       deletions,
		exports:         exports,
		assistantDrafts: drafts,
	}
}

// Handler returns the http.Handler for /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records request count and latency.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// Registerer exposes the registry for custom collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// ObserveStatusChange counts an order moved to status.
func (m *Metrics) ObserveStatusChange(status string) {
	if m == nil {
		return
	}
	m.statusChanges.WithLabelValues(status).Inc()
}

// ObserveDeletion counts a confirmed delete of entity.
func (m *Metrics) ObserveDeletion(entity string) {
	if m == nil {
		return
	}
	m.deletions.WithLabelValues(entity).Inc()
}

// ObserveExport counts a generated export.
func (m *Metrics) ObserveExport(kind string) {
	if m == nil {
		return
	}
	m.exports.WithLabelValues(kind).Inc()
}

// ObserveAssistantDraft counts an assistant draft by outcome.
func (m *Metrics) ObserveAssistantDraft(outcome string) {
	if m == nil {
		return
	}
	m.assistantDrafts.WithLabelValues(outcome).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
