package observability

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements Metrics on a private registry. Vectors are
// created on first use; the label set of a metric is fixed by its first call
// and missing labels on later calls are recorded as "".
type PrometheusMetrics struct {
	namespace string
	registry  *prometheus.Registry
	factory   promauto.Factory

	mu         sync.Mutex
	counters   map[string]*vec[*prometheus.CounterVec]
	gauges     map[string]*vec[*prometheus.GaugeVec]
	histograms map[string]*vec[*prometheus.HistogramVec]
}

type vec[V any] struct {
	v      V
	labels []string
}

// NewPrometheusMetrics creates a collector with Go and process metrics
// already registered.
func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return &PrometheusMetrics{
		namespace:  namespace,
		registry:   registry,
		factory:    promauto.With(registry),
		counters:   make(map[string]*vec[*prometheus.CounterVec]),
		gauges:     make(map[string]*vec[*prometheus.GaugeVec]),
		histograms: make(map[string]*vec[*prometheus.HistogramVec]),
	}
}

// Handler serves the registry in the exposition format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *PrometheusMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *PrometheusMetrics) Counter(name string, value int64, tags ...Tag) {
	m.mu.Lock()
	c, ok := m.counters[name]
	if !ok {
		labels := labelNames(tags)
		c = &vec[*prometheus.CounterVec]{
			v: m.factory.NewCounterVec(prometheus.CounterOpts{
				Namespace: m.namespace,
				Name:      metricName(name),
				Help:      name,
			}, labels),
			labels: labels,
		}
		m.counters[name] = c
	}
	m.mu.Unlock()
	c.v.With(labelValues(c.labels, tags)).Add(float64(value))
}

func (m *PrometheusMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	g, ok := m.gauges[name]
	if !ok {
		labels := labelNames(tags)
		g = &vec[*prometheus.GaugeVec]{
			v: m.factory.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: m.namespace,
				Name:      metricName(name),
				Help:      name,
			}, labels),
			labels: labels,
		}
		m.gauges[name] = g
	}
	m.mu.Unlock()
	g.v.With(labelValues(g.labels, tags)).Set(value)
}

func (m *PrometheusMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.histogram(metricName(name), prometheus.DefBuckets, tags).Observe(value)
}

// Timing records seconds in a histogram named <name>_seconds.
func (m *PrometheusMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.histogram(metricName(name)+"_seconds", prometheus.DefBuckets, tags).Observe(duration.Seconds())
}

func (m *PrometheusMetrics) histogram(name string, buckets []float64, tags []Tag) prometheus.Observer {
	m.mu.Lock()
	h, ok := m.histograms[name]
	if !ok {
		labels := labelNames(tags)
		h = &vec[*prometheus.HistogramVec]{
			v: m.factory.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: m.namespace,
				Name:      name,
				Help:      name,
				Buckets:   buckets,
			}, labels),
			labels: labels,
		}
		m.histograms[name] = h
	}
	m.mu.Unlock()
	return h.v.With(labelValues(h.labels, tags))
}

func metricName(name string) string {
	return strings.NewReplacer(".", "_", "-", "_").Replace(name)
}

func labelNames(tags []Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Key)
	}
	sort.Strings(names)
	return names
}

func labelValues(names []string, tags []Tag) prometheus.Labels {
	labels := make(prometheus.Labels, len(names))
	for _, n := range names {
		labels[n] = ""
	}
	for _, t := range tags {
		if _, ok := labels[t.Key]; ok {
			labels[t.Key] = t.Value
		}
	}
	return labels
}
