// Package metrics defines the Prometheus metrics of the API.
//
// Metrics live in a dedicated registry rather than the global default so
// tests can build independent instances.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the collectors recorded by the HTTP layer and the services.
type Metrics struct {
	registry *prometheus.Registry

	// RequestsTotal counts HTTP requests by method, route pattern and status code.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes HTTP latency by method and route pattern.
	RequestDuration *prometheus.HistogramVec

	// AuthzDecisions counts authorization decisions by action and result.
	AuthzDecisions *prometheus.CounterVec

	// TokenFailures counts rejected bearer tokens by reason.
	TokenFailures *prometheus.CounterVec
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "myflix_http_requests_total",
				Help: "Total HTTP requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "myflix_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthzDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "myflix_authz_decisions_total",
				Help: "Authorization decisions by action and result.",
			},
			[]string{"action", "result"},
		),
		TokenFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "myflix_token_validation_failures_total",
				Help: "Rejected bearer tokens by reason.",
			},
			[]string{"reason"},
		),
	}

	m.registry.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.AuthzDecisions,
		m.TokenFailures,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
