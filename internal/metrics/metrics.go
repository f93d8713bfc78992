// Package metrics exposes Prometheus instrumentation for the gateway.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the gateway's Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	inFlight     prometheus.Gauge
	upstreamErrs *prometheus.CounterVec
}

// New creates a metric set on a private registry.
func New(service string) *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "storefront_http_requests_total",
			Help:        "HTTP requests processed, by method, route and status.",
			ConstLabels: prometheus.Labels{"service": service},
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "storefront_http_request_duration_seconds",
			Help:        "HTTP request latency, by method and route.",
			ConstLabels: prometheus.Labels{"service": service},
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "storefront_http_requests_in_flight",
			Help:        "HTTP requests currently being served.",
			ConstLabels: prometheus.Labels{"service": service},
		}),
		upstreamErrs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "storefront_upstream_errors_total",
			Help:        "Failed calls to the marketplace API, by endpoint.",
			ConstLabels: prometheus.Labels{"service": service},
		}, []string{"endpoint"}),
	}

	registry.MustRegister(m.httpRequests, m.httpDuration, m.inFlight, m.upstreamErrs)
	return m
}

// RecordHTTPRequest records one completed request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// IncrementInFlight marks a request as started.
func (m *Metrics) IncrementInFlight() { m.inFlight.Inc() }

// DecrementInFlight marks a request as finished.
func (m *Metrics) DecrementInFlight() { m.inFlight.Dec() }

// RecordUpstreamError counts a failed marketplace API call.
func (m *Metrics) RecordUpstreamError(endpoint string) {
	m.upstreamErrs.WithLabelValues(endpoint).Inc()
}

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
