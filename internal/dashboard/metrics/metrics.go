// Package metrics collects Prometheus counters for the dashboard service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service collectors backed by a private registry so
// tests can run multiple instances without duplicate registration.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	gatewayCalls    *prometheus.CounterVec
	gatewayDuration *prometheus.HistogramVec
	cacheServes     prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgerdeck_http_requests_total",
			Help: "HTTP requests served, by route and status code.",
		}, []string{"route", "status"}),
		gatewayCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledgerdeck_gateway_calls_total",
			Help: "Ledger gateway calls, by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		gatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledgerdeck_gateway_call_seconds",
			Help:    "Ledger gateway call latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		cacheServes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ledgerdeck_cache_serves_total",
			Help: "Dashboard sections served from the stale snapshot cache.",
		}),
	}
	reg.MustRegister(
		m.httpRequests,
		m.gatewayCalls,
		m.gatewayDuration,
		m.cacheServes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveRequest records one served HTTP request.
func (m *Metrics) ObserveRequest(route string, status int) {
	m.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
}

// ObserveGatewayCall records one ledger gateway call and its latency.
func (m *Metrics) ObserveGatewayCall(endpoint, outcome string, elapsed time.Duration) {
	m.gatewayCalls.WithLabelValues(endpoint, outcome).Inc()
	m.gatewayDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveCacheServe records a dashboard section rendered from cached data.
func (m *Metrics) ObserveCacheServe() {
	m.cacheServes.Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
