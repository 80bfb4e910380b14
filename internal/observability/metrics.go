package observability

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

// Metrics holds the service's Prometheus collectors. All methods are safe on
// a nil receiver so callers never need to check whether metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpLatency  *prometheus.HistogramVec
	httpInflight prometheus.Gauge

	jobsTotal    *prometheus.CounterVec
	jobsInflight prometheus.Gauge
	stageLatency *prometheus.HistogramVec
	persistLat   *prometheus.HistogramVec
	llmRequests  *prometheus.CounterVec
	llmLatency   *prometheus.HistogramVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

// Current returns the process-wide metrics, or nil when Init was never called.
func Current() *Metrics {
	return instance
}

// Init registers the process-wide collectors once.
func Init(log *logger.Logger) *Metrics {
	initOnce.Do(func() {
		instance = New()
		if log != nil {
			log.Info("metrics initialized")
		}
	})
	return instance
}

// New builds an independent set of collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	stageBuckets := []float64{1, 5, 10, 20, 30, 60, 90, 120, 180, 240}
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_inflight",
			Help: "HTTP requests currently being served.",
		}),
		jobsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "workout_jobs_total",
			Help: "Plan generation jobs by state transition.",
		}, []string{"state"}),
		jobsInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "workout_jobs_inflight",
			Help: "Plan generation jobs currently running.",
		}),
		stageLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "workout_stage_duration_seconds",
			Help:    "Duration of each plan generation stage.",
			Buckets: stageBuckets,
		}, []string{"stage", "outcome"}),
		persistLat: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "workout_persist_duration_seconds",
			Help:    "Duration of the plan persistence transaction.",
			Buckets: prometheus.DefBuckets,
		}, []string{"outcome"}),
		llmRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "llm_requests_total",
			Help: "Chat completion requests by model and status.",
		}, []string{"model", "status"}),
		llmLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Chat completion request latency.",
			Buckets: stageBuckets,
		}, []string{"model"}),
	}
	reg.MustRegister(
		m.httpRequests, m.httpLatency, m.httpInflight,
		m.jobsTotal, m.jobsInflight, m.stageLatency, m.persistLat,
		m.llmRequests, m.llmLatency,
	)
	return m
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.httpInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.httpInflight.Dec()
}

// IncJob counts a job entering state.
func (m *Metrics) IncJob(state string) {
	if m == nil {
		return
	}
	m.jobsTotal.WithLabelValues(state).Inc()
}

func (m *Metrics) JobStarted() {
	if m == nil {
		return
	}
	m.jobsInflight.Inc()
}

func (m *Metrics) JobFinished() {
	if m == nil {
		return
	}
	m.jobsInflight.Dec()
}

func (m *Metrics) ObserveStage(stage, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.stageLatency.WithLabelValues(stage, outcome).Observe(dur.Seconds())
}

func (m *Metrics) ObservePersist(outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.persistLat.WithLabelValues(outcome).Observe(dur.Seconds())
}

func (m *Metrics) ObserveLLMRequest(model, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.llmRequests.WithLabelValues(model, status).Inc()
	m.llmLatency.WithLabelValues(model).Observe(dur.Seconds())
}
