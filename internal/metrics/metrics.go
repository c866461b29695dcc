// Package metrics exposes Prometheus collectors for the HTTP surface, the
// settlement engine and the balance cache. A nil *Metrics records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests   *prometheus.CounterVec
	httpDuration   *prometheus.HistogramVec
	settlements    *prometheus.CounterVec
	settleDuration prometheus.Histogram
	cacheLookups   *prometheus.CounterVec
	wagersReplaced prometheus.Counter
	pairsSkipped   prometheus.Counter
}

// New registers the collectors under namespace.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds", Help: "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		settlements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "settlements_total", Help: "Settlement computations by kind and outcome.",
		}, []string{"kind", "outcome"}),
		settleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "settlement_duration_seconds", Help: "Time to load and settle championships.",
			Buckets: prometheus.DefBuckets,
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "balance_cache_lookups_total", Help: "Balance cache lookups by result.",
		}, []string{"result"}),
		wagersReplaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "wagers_inserted_total", Help: "Wager rows written by batch replacement.",
		}),
		pairsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "wager_pairs_skipped_total", Help: "Slips skipped because their pair is not registered.",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.settlements, m.settleDuration,
		m.cacheLookups, m.wagersReplaced, m.pairsSkipped,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.httpRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// ObserveSettlement records one settlement call of kind ("single", "multiple").
func (m *Metrics) ObserveSettlement(kind string, started time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.settlements.WithLabelValues(kind, outcome).Inc()
	m.settleDuration.Observe(time.Since(started).Seconds())
}

// CacheHit counts a balance cache hit.
func (m *Metrics) CacheHit() {
	if m != nil {
		m.cacheLookups.WithLabelValues("hit").Inc()
	}
}

// CacheMiss counts a balance cache miss.
func (m *Metrics) CacheMiss() {
	if m != nil {
		m.cacheLookups.WithLabelValues("miss").Inc()
	}
}

// WagersInserted adds n written wager rows.
func (m *Metrics) WagersInserted(n int) {
	if m != nil {
		m.wagersReplaced.Add(float64(n))
	}
}

// PairsSkipped adds n slips skipped for an unknown pair.
func (m *Metrics) PairsSkipped(n int) {
	if m != nil {
		m.pairsSkipped.Add(float64(n))
	}
}
