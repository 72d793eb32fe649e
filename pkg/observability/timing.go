package observability

import (
	"log/slog"
	"time"
)

// Timer measures one operation and reports it on Stop.
type Timer struct {
	name    string
	start   time.Time
	logger  *slog.Logger
	metrics Metrics
	tags    []Tag
}

// StartTimer starts timing the metric name.
func StartTimer(name string) *Timer {
	return &Timer{name: name, start: time.Now()}
}

// WithLogger logs a debug line on Stop.
func (t *Timer) WithLogger(logger *slog.Logger) *Timer {
	t.logger = logger
	return t
}

// WithMetrics records a Timing on Stop.
func (t *Timer) WithMetrics(metrics Metrics) *Timer {
	t.metrics = metrics
	return t
}

// WithTags labels the recorded timing.
func (t *Timer) WithTags(tags ...Tag) *Timer {
	t.tags = append(t.tags, tags...)
	return t
}

// Stop records the elapsed time with an outcome tag of "ok" or "error".
func (t *Timer) Stop(err error) time.Duration {
	elapsed := time.Since(t.start)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}

	if t.metrics != nil {
		t.metrics.Timing(t.name, elapsed, append(t.tags, T("outcome", outcome))...)
	}
	if t.logger != nil {
		t.logger.Debug("timed operation",
			"operation", t.name,
			DurationKey, elapsed.Milliseconds(),
			"outcome", outcome,
		)
	}
	return elapsed
}
