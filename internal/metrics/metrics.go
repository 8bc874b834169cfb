// Package metrics exposes Prometheus instrumentation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RPCCallsTotal   *prometheus.CounterVec
	RPCCallDuration *prometheus.HistogramVec

	WebhookEventsTotal *prometheus.CounterVec
	CallProvisioning   *prometheus.CounterVec
	ProductCache       *prometheus.CounterVec
	SSEClients         prometheus.Gauge
	CallIntents        *prometheus.GaugeVec
	JobRuns            *prometheus.CounterVec
}

// New registers every metric on a fresh registry so tests can build as many
// instances as they need.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		RPCCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rpc_calls_total",
				Help: "Total number of RPC procedure calls by outcome code",
			},
			[]string{"procedure", "code"},
		),
		RPCCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rpc_call_duration_seconds",
				Help:    "RPC procedure latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"procedure"},
		),

		WebhookEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "webhook_events_total",
				Help: "Call platform webhook events by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		CallProvisioning: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "call_provisioning_total",
				Help: "Video call provisioning attempts by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		ProductCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "premium_product_cache_total",
				Help: "Premium product cache lookups by result",
			},
			[]string{"result"},
		),
		SSEClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sse_clients",
			Help: "Currently connected event stream clients",
		}),
		CallIntents: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "call_intents",
				Help: "Call provisioning intents by status, sampled after each reconciliation",
			},
			[]string{"status"},
		),
		JobRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "job_runs_total",
				Help: "Background job runs by job and outcome",
			},
			[]string{"job", "outcome"},
		),
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// The helpers below are nil-safe so callers can run without instrumentation.

func (m *Metrics) ObserveRPC(procedure, code string, seconds float64) {
	if m == nil {
		return
	}
	m.RPCCallsTotal.WithLabelValues(procedure, code).Inc()
	m.RPCCallDuration.WithLabelValues(procedure).Observe(seconds)
}

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func (m *Metrics) WebhookEvent(eventType, outcome string) {
	if m == nil {
		return
	}
	m.WebhookEventsTotal.WithLabelValues(eventType, outcome).Inc()
}

func (m *Metrics) Provisioned(source string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.CallProvisioning.WithLabelValues(source, outcome).Inc()
}

func (m *Metrics) CacheResult(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ProductCache.WithLabelValues(result).Inc()
}

func (m *Metrics) SSEConnected(delta float64) {
	if m == nil {
		return
	}
	m.SSEClients.Add(delta)
}

func (m *Metrics) SetCallIntents(status string, count int) {
	if m == nil {
		return
	}
	m.CallIntents.WithLabelValues(status).Set(float64(count))
}

func (m *Metrics) JobRun(job string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.JobRuns.WithLabelValues(job, outcome).Inc()
}
