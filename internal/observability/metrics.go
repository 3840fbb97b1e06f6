package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every Prometheus collector the service exports. All record
// methods are safe on a nil receiver so components can run without metrics.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests *prometheus.CounterVec
	apiLatency  *prometheus.HistogramVec
	apiInflight prometheus.Gauge

	llmRequests *prometheus.CounterVec
	llmLatency  *prometheus.HistogramVec
	llmBreaker  *prometheus.GaugeVec

	generations  *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec

	loaderRuns      prometheus.Counter
	loaderLanguages *prometheus.CounterVec
	loaderDuration  prometheus.Histogram
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sotfinder_api_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sotfinder_api_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: f.NewGauge(prometheus.GaugeOpts{
			Name: "sotfinder_api_inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		llmRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sotfinder_llm_requests_total",
			Help: "LLM calls by operation and outcome.",
		}, []string{"operation", "outcome"}),
		llmLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "sotfinder_llm_request_duration_seconds",
			Help:    "LLM call latency including retries.",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 40, 60, 120, 240},
		}, []string{"operation"}),
		llmBreaker: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "sotfinder_llm_breaker_open",
			Help: "1 while the LLM circuit breaker is open.",
		}, []string{"name"}),
		generations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sotfinder_curriculum_generations_total",
			Help: "Curriculum generations by resulting status.",
		}, []string{"status"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sotfinder_curriculum_cache_lookups_total",
			Help: "Curriculum cache lookups by tier and result.",
		}, []string{"tier", "result"}),
		loaderRuns: f.NewCounter(prometheus.CounterOpts{
			Name: "sotfinder_loader_runs_total",
			Help: "Completed scheduled loader sweeps.",
		}),
		loaderLanguages: f.NewCounterVec(prometheus.CounterOpts{
			Name: "sotfinder_loader_languages_total",
			Help: "Per-language loader outcomes.",
		}, []string{"outcome"}),
		loaderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "sotfinder_loader_duration_seconds",
			Help:    "Duration of a full loader sweep.",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ObserveAPIRequest(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) IncAPIInflight() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) DecAPIInflight() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveLLMRequest(operation, outcome string, dur time.Duration) {
	if m == nil {
		return
	}
	m.llmRequests.WithLabelValues(operation, outcome).Inc()
	m.llmLatency.WithLabelValues(operation).Observe(dur.Seconds())
}

func (m *Metrics) SetLLMBreakerOpen(name string, open bool) {
	if m == nil {
		return
	}
	v := 0.0
	if open {
		v = 1
	}
	m.llmBreaker.WithLabelValues(name).Set(v)
}

func (m *Metrics) IncGeneration(status string) {
	if m == nil {
		return
	}
	m.generations.WithLabelValues(status).Inc()
}

func (m *Metrics) ObserveCacheLookup(tier string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(tier, result).Inc()
}

func (m *Metrics) IncLoaderLanguage(outcome string) {
	if m == nil {
		return
	}
	m.loaderLanguages.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveLoaderRun(dur time.Duration) {
	if m == nil {
		return
	}
	m.loaderRuns.Inc()
	m.loaderDuration.Observe(dur.Seconds())
}
