// Package metrics exposes Prometheus collectors for ingestion, aggregation and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Webhook outcomes
const (
	OutcomeAccepted            = "accepted"
	OutcomeInvalidPayload      = "invalid_payload"
	OutcomeNormalizationFailed = "normalization_failed"
	OutcomePersistenceFailed   = "persistence_failed"
)

// Aggregation outcomes
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds every collector on a private registry. A nil *Metrics is a valid no-op.
type Metrics struct {
	registry         *prometheus.Registry
	webhooksReceived *prometheus.CounterVec
	aggregations     *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
}

// New creates and registers the collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		webhooksReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderdesk",
			Name:      "webhooks_received_total",
			Help:      "Webhook deliveries by channel and outcome.",
		}, []string{"channel", "outcome"}),
		aggregations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orderdesk",
			Name:      "customer_recomputations_total",
			Help:      "Customer profile recomputations by outcome.",
		}, []string{"outcome"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "orderdesk",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	registry.MustRegister(
		m.webhooksReceived,
		m.aggregations,
		m.requestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveWebhook counts one webhook delivery
func (m *Metrics) ObserveWebhook(channel, outcome string) {
	if m == nil {
		return
	}
	m.webhooksReceived.WithLabelValues(channel, outcome).Inc()
}

// ObserveAggregation counts one customer recomputation
func (m *Metrics) ObserveAggregation(outcome string) {
	if m == nil {
		return
	}
	m.aggregations.WithLabelValues(outcome).Inc()
}

// ObserveRequest records the latency of one HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
