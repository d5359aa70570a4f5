package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector the service exports. All methods are safe on
// a nil receiver so callers never have to branch on whether metrics are
// enabled.
type Metrics struct {
	registry *prometheus.Registry

	httpDuration *prometheus.HistogramVec
	httpRequests *prometheus.CounterVec

	jobDuration *prometheus.HistogramVec
	jobSuccess  *prometheus.CounterVec
	jobFailure  *prometheus.CounterVec

	reportRequests *prometheus.CounterVec
	reportEntries  prometheus.Histogram
}

// New builds a Metrics instance backed by its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg)
}

// NewWithRegistry registers all collectors on the provided registry.
func NewWithRegistry(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		return &Metrics{}
	}
	httpDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, by method, route and status.",
	}, []string{"method", "route", "status"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "job_duration_seconds",
		Help:    "Duration of cron jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	jobSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_success",
		Help: "Successful cron job executions.",
	}, []string{"job"})
	jobFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "job_failure",
		Help: "Failed cron job executions.",
	}, []string{"job"})
	reportRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_requests_total",
		Help: "Report computations, by kind and granularity.",
	}, []string{"kind", "granularity"})
	reportEntries := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "report_entries_scanned",
		Help:    "Entries scanned per report computation.",
		Buckets: prometheus.ExponentialBuckets(10, 4, 8),
	})
	reg.MustRegister(
		httpDuration, httpRequests,
		jobDuration, jobSuccess, jobFailure,
		reportRequests, reportEntries,
	)
	return &Metrics{
		registry:       reg,
		httpDuration:   httpDuration,
		httpRequests:   httpRequests,
		jobDuration:    jobDuration,
		jobSuccess:     jobSuccess,
		jobFailure:     jobFailure,
		reportRequests: reportRequests,
		reportEntries:  reportEntries,
	}
}

// Handler serves the scrape endpoint for this instance's registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil || m.httpDuration == nil {
		return
	}
	method = normalizeLabel(method)
	route = normalizeLabel(route)
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// ObserveJobDuration records the duration for the named job.
func (m *Metrics) ObserveJobDuration(job string, duration time.Duration) {
	if m == nil || m.jobDuration == nil {
		return
	}
	m.jobDuration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncJobSuccess increments the success counter for the named job.
func (m *Metrics) IncJobSuccess(job string) {
	if m == nil || m.jobSuccess == nil {
		return
	}
	m.jobSuccess.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncJobFailure increments the failure counter for the named job.
func (m *Metrics) IncJobFailure(job string) {
	if m == nil || m.jobFailure == nil {
		return
	}
	m.jobFailure.WithLabelValues(normalizeLabel(job)).Inc()
}

// ObserveReport records one report computation and the number of entries it
// scanned.
func (m *Metrics) ObserveReport(kind, granularity string, scanned int) {
	if m == nil || m.reportRequests == nil {
		return
	}
	m.reportRequests.WithLabelValues(normalizeLabel(kind), normalizeLabel(granularity)).Inc()
	m.reportEntries.Observe(float64(scanned))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
