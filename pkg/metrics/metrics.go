// Package metrics exposes cache and HTTP instrumentation for Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Eviction reasons.
const (
	ReasonTTL      = "ttl"
	ReasonCapacity = "capacity"
)

// Metrics holds the collectors for one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Lookups      *prometheus.CounterVec
	CachedTokens prometheus.Counter
	Evictions    *prometheus.CounterVec
	Entries      prometheus.Gauge
	HTTPDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry, alongside the standard
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Lookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "answercache_lookups_total",
				Help: "Cache lookups by result",
			},
			[]string{"result"}, // hit, miss
		),
		CachedTokens: f.NewCounter(prometheus.CounterOpts{
			Name: "answercache_cached_tokens_total",
			Help: "Estimated tokens served from cache instead of the upstream",
		}),
		Evictions: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "answercache_evictions_total",
				Help: "Entries removed from the cache by reason",
			},
			[]string{"reason"},
		),
		Entries: f.NewGauge(prometheus.GaugeOpts{
			Name: "answercache_entries",
			Help: "Resident cache entries",
		}),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "answercache_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
			},
			[]string{"path", "status"},
		),
	}
}

// Handler serves the exposition format for m's registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHit records a cache hit worth tokens.
func (m *Metrics) ObserveHit(tokens int) {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues("hit").Inc()
	m.CachedTokens.Add(float64(tokens))
}

// ObserveMiss records a cache miss.
func (m *Metrics) ObserveMiss() {
	if m == nil {
		return
	}
	m.Lookups.WithLabelValues("miss").Inc()
}

// ObserveEvictions records n entries removed for reason.
func (m *Metrics) ObserveEvictions(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Evictions.WithLabelValues(reason).Add(float64(n))
}

// SetEntries records current occupancy.
func (m *Metrics) SetEntries(n int) {
	if m == nil {
		return
	}
	m.Entries.Set(float64(n))
}
