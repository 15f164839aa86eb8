// Package prometheus provides a Prometheus-based stats collector.
package prometheus

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pathwae/dashboard/internal/stats"
)

// Collector implements stats.Collector using Prometheus metrics.
// Metrics are created and registered lazily on first use.
type Collector struct {
	registry prometheus.Registerer
	buckets  []float64

	mu         sync.RWMutex
	counters   map[string]prometheus.Counter
	gauges     map[string]prometheus.Gauge
	histograms map[string]prometheus.Histogram
}

var _ stats.Collector = (*Collector)(nil)

// Option configures a Collector.
type Option func(*Collector)

// WithBuckets sets the histogram buckets. Defaults to prometheus.DefBuckets,
// which suits request latencies in seconds.
func WithBuckets(buckets []float64) Option {
	return func(c *Collector) {
		c.buckets = buckets
	}
}

// New creates a new Prometheus collector.
// If registry is nil, prometheus.DefaultRegisterer is used.
func New(registry prometheus.Registerer, opts ...Option) *Collector {
	if registry == nil {
		registry = prometheus.DefaultRegisterer
	}
	c := &Collector{
		registry:   registry,
		buckets:    prometheus.DefBuckets,
		counters:   make(map[string]prometheus.Counter),
		gauges:     make(map[string]prometheus.Gauge),
		histograms: make(map[string]prometheus.Histogram),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Collector) IncCounter(name string, delta int64) {
	counter := lookup(c, c.counters, name, func() prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{Name: name, Help: help(name)})
	})
	counter.Add(float64(delta))
}

func (c *Collector) SetGauge(name string, value int64) {
	gauge := lookup(c, c.gauges, name, func() prometheus.Gauge {
		return prometheus.NewGauge(prometheus.GaugeOpts{Name: name, Help: help(name)})
	})
	gauge.Set(float64(value))
}

func (c *Collector) ObserveHistogram(name string, value float64) {
	histogram := lookup(c, c.histograms, name, func() prometheus.Histogram {
		return prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    name,
			Help:    help(name),
			Buckets: c.buckets,
		})
	})
	histogram.Observe(value)
}

// lookup returns the metric cached under name, creating and registering it
// when missing. A metric already registered elsewhere under the same name is
// reused.
func lookup[M prometheus.Collector](c *Collector, cache map[string]M, name string, create func() M) M {
	c.mu.RLock()
	m, ok := cache[name]
	c.mu.RUnlock()
	if ok {
		return m
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if m, ok = cache[name]; ok {
		return m
	}

	m = create()
	if err := c.registry.Register(m); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(M); ok {
				m = existing
			}
		}
	}
	cache[name] = m
	return m
}

var helpText = map[string]string{
	stats.MetricRequests:         "Requests issued to the proxy API.",
	stats.MetricRequestErrors:    "Requests to the proxy API that failed.",
	stats.MetricRequestDuration:  "Proxy API round trip time in seconds.",
	stats.MetricCertificateMiss:  "Certificate lookups that returned no certificate.",
	stats.MetricWatchEvents:      "Server-sent events received.",
	stats.MetricSnapshotBackends: "Backends in the last fleet snapshot.",
	stats.MetricExports:          "Snapshots exported.",
	stats.MetricExportBytes:      "Size of the last exported snapshot in bytes.",
}

func help(name string) string {
	if h, ok := helpText[name]; ok {
		return h
	}
	return name
}
