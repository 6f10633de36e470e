package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "workforce"

// Metrics holds the service's Prometheus collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	requests      *prometheus.CounterVec
	requestTime   *prometheus.HistogramVec
	errors        *prometheus.CounterVec
	forecastHours *prometheus.CounterVec
	schedules     prometheus.Counter
	coverage      prometheus.Gauge
	serviceLevel  prometheus.Gauge
	jobRuns       *prometheus.CounterVec
	jobDuration   *prometheus.HistogramVec
}

// NewMetrics registers all collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status",
		}, []string{"path", "method", "status"}),
		requestTime: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"path", "method"}),
		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_errors_total",
			Help:      "HTTP error responses by route, method and error code",
		}, []string{"path", "method", "code"}),
		forecastHours: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_hours_total",
			Help:      "Forecast hours processed by outcome",
		}, []string{"outcome"}),
		schedules: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedules_generated_total",
			Help:      "Schedules generated",
		}),
		coverage: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schedule_coverage_percentage",
			Help:      "Coverage percentage of the most recently generated schedule",
		}),
		serviceLevel: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schedule_service_level",
			Help:      "Achieved service level of the most recently generated schedule",
		}),
		jobRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Periodic job runs by job and outcome",
		}, []string{"job", "outcome"}),
		jobDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Periodic job run time",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 15, 30, 60, 300},
		}, []string{"job"}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordRequest counts a served request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.requestTime.WithLabelValues(path, method).Observe(duration.Seconds())
}

// RecordError counts an error response.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(path, method, code).Inc()
}

// ObserveForecastHour counts one processed forecast hour.
func (m *Metrics) ObserveForecastHour(outcome string) {
	if m == nil {
		return
	}
	m.forecastHours.WithLabelValues(outcome).Inc()
}

// ObserveSchedule records a generated schedule's quality.
func (m *Metrics) ObserveSchedule(coverage, serviceLevel float64) {
	if m == nil {
		return
	}
	m.schedules.Inc()
	m.coverage.Set(coverage)
	m.serviceLevel.Set(serviceLevel)
}

// ObserveJob records a periodic job run.
func (m *Metrics) ObserveJob(job, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.jobRuns.WithLabelValues(job, outcome).Inc()
	m.jobDuration.WithLabelValues(job).Observe(duration.Seconds())
}
