package observability

import (
	"sort"
	"strings"
	"sync"
	"time"
)

// Metrics records application measurements. Implementations must be safe for
// concurrent use.
type Metrics interface {
	Counter(name string, value int64, tags ...Tag)
	Gauge(name string, value float64, tags ...Tag)
	Histogram(name string, value float64, tags ...Tag)
	Timing(name string, duration time.Duration, tags ...Tag)
}

// Tag is a metric label.
type Tag struct {
	Key   string
	Value string
}

// T creates a Tag.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// Metric names.
const (
	MetricClassifierRequests  = "classifier_requests_total"
	MetricClassifierDuration  = "classifier_duration"
	MetricEnrichmentAttempts  = "enrichment_attempts_total"
	MetricCaptures            = "capture_total"
	MetricCacheLookups        = "view_cache_lookups_total"
	MetricOutboxMessages      = "outbox_messages_total"
	MetricOutboxPending       = "outbox_pending"
	MetricHTTPRequestDuration = "http_request_duration"
)

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)        {}
func (NoopMetrics) Gauge(string, float64, ...Tag)        {}
func (NoopMetrics) Histogram(string, float64, ...Tag)    {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag) {}

// InMemoryMetrics keeps every series in memory so tests can assert on it.
type InMemoryMetrics struct {
	mu     sync.RWMutex
	series map[string]*memSeries
}

type memSeries struct {
	count     int64
	gauge     float64
	values    []float64
	durations []time.Duration
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{series: map[string]*memSeries{}}
}

// at returns the series for name and tags, creating it. Callers hold mu.
func (m *InMemoryMetrics) at(name string, tags []Tag) *memSeries {
	key := seriesKey(name, tags)
	s, ok := m.series[key]
	if !ok {
		s = &memSeries{}
		m.series[key] = s
	}
	return s
}

func (m *InMemoryMetrics) lookup(name string, tags []Tag) memSeries {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.series[seriesKey(name, tags)]; ok {
		return *s
	}
	return memSeries{}
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	m.mu.Lock()
	m.at(name, tags).count += value
	m.mu.Unlock()
}

func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	m.at(name, tags).gauge = value
	m.mu.Unlock()
}

func (m *InMemoryMetrics) Histogram(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	s := m.at(name, tags)
	s.values = append(s.values, value)
	m.mu.Unlock()
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.mu.Lock()
	s := m.at(name, tags)
	s.durations = append(s.durations, duration)
	m.mu.Unlock()
}

// GetCounter returns a counter value. Tag order does not matter.
func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	return m.lookup(name, tags).count
}

func (m *InMemoryMetrics) GetGauge(name string, tags ...Tag) float64 {
	return m.lookup(name, tags).gauge
}

func (m *InMemoryMetrics) GetTimings(name string, tags ...Tag) []time.Duration {
	return append([]time.Duration(nil), m.lookup(name, tags).durations...)
}

// Reset drops every series.
func (m *InMemoryMetrics) Reset() {
	m.mu.Lock()
	m.series = map[string]*memSeries{}
	m.mu.Unlock()
}

// seriesKey renders name{k=v,...} with tags sorted by key.
func seriesKey(name string, tags []Tag) string {
	if len(tags) == 0 {
		return name
	}
	sorted := append([]Tag(nil), tags...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })
	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, t := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.Key)
		b.WriteByte('=')
		b.WriteString(t.Value)
	}
	b.WriteByte('}')
	return b.String()
}
