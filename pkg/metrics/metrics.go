// Package metrics collects pipeline counters on a private Prometheus registry
// and can dump them in the node_exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcomes used as the "outcome" label.
const (
	OutcomeOK        = "ok"
	OutcomeRemote    = "remote_error"
	OutcomeTransfer  = "transfer_error"
	OutcomeCancelled = "cancelled"
)

// Metrics holds the pipeline metrics. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	FetchesTotal   *prometheus.CounterVec
	BytesTotal     *prometheus.CounterVec
	CacheHitsTotal *prometheus.CounterVec
	FetchDuration  *prometheus.HistogramVec
	Unsupported    prometheus.Counter
}

// New creates the metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FetchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "apod_fetches_total",
			Help: "Total number of remote fetches by artifact kind and outcome.",
		}, []string{"kind", "outcome"}),
		BytesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "apod_fetched_bytes_total",
			Help: "Total number of bytes written to the cache.",
		}, []string{"kind"}),
		CacheHitsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "apod_cache_hits_total",
			Help: "Total number of requests served from the cache.",
		}, []string{"kind"}),
		FetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "apod_fetch_duration_seconds",
			Help:    "Duration of remote fetches.",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"kind"}),
		Unsupported: factory.NewCounter(prometheus.CounterOpts{
			Name: "apod_unsupported_media_total",
			Help: "Total number of definitions whose media kind is not downloadable.",
		}),
	}
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveFetch records one finished fetch.
func (m *Metrics) ObserveFetch(kind, outcome string, elapsed time.Duration, bytes int64) {
	if m == nil {
		return
	}
	m.FetchesTotal.WithLabelValues(kind, outcome).Inc()
	m.FetchDuration.WithLabelValues(kind).Observe(elapsed.Seconds())
	if bytes > 0 {
		m.BytesTotal.WithLabelValues(kind).Add(float64(bytes))
	}
}

// IncCacheHit records a request answered from the cache.
func (m *Metrics) IncCacheHit(kind string) {
	if m == nil {
		return
	}
	m.CacheHitsTotal.WithLabelValues(kind).Inc()
}

// IncUnsupported records a definition with a non-downloadable media kind.
func (m *Metrics) IncUnsupported() {
	if m == nil {
		return
	}
	m.Unsupported.Inc()
}

// WriteTextfile writes all metrics to path atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
