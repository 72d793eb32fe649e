package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/felixgeelhaar/synapse/internal/shared/domain"
	"github.com/felixgeelhaar/synapse/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/synapse/pkg/observability"
)

// ProcessorConfig tunes polling and retry behaviour.
type ProcessorConfig struct {
	PollInterval     time.Duration
	BatchSize        int
	MaxRetries       int
	RetryBackoffBase time.Duration
	RetryBackoffMax  time.Duration
}

// DefaultProcessorConfig polls every 100ms and dead-letters after 5 attempts.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		PollInterval:     100 * time.Millisecond,
		BatchSize:        100,
		MaxRetries:       5,
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  time.Minute,
	}
}

type outcome string

const (
	outcomePublished outcome = "published"
	outcomeFailed    outcome = "failed"
	outcomeDead      outcome = "dead"
)

// Processor drains due outbox messages into a Publisher. A message that
// fails is rescheduled with exponential backoff until MaxRetries, then
// dead-lettered.
type Processor struct {
	repo      Repository
	publisher eventbus.Publisher
	cfg       ProcessorConfig
	logger    *slog.Logger
	metrics   observability.Metrics

	lifecycle sync.Mutex
	cancel    context.CancelFunc
	done      chan struct{}

	statsMu sync.Mutex
	stats   Stats
}

func NewProcessor(repo Repository, publisher eventbus.Publisher, cfg ProcessorConfig, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultProcessorConfig().PollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultProcessorConfig().BatchSize
	}
	return &Processor{
		repo:      repo,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger.With("component", "outbox"),
		metrics:   observability.NoopMetrics{},
	}
}

// WithMetrics reports publish outcomes to m.
func (p *Processor) WithMetrics(m observability.Metrics) *Processor {
	if m != nil {
		p.metrics = m
	}
	return p
}

// Start launches the polling loop. It returns immediately; calling it on a
// running processor is a no-op.
func (p *Processor) Start(ctx context.Context) error {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	if p.cancel != nil {
		return nil
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(loopCtx, p.done)

	p.logger.Info("outbox processor started",
		"poll_interval", p.cfg.PollInterval,
		"batch_size", p.cfg.BatchSize,
		"max_retries", p.cfg.MaxRetries,
	)
	return nil
}

// Stop cancels the loop and blocks until the current batch is finished.
func (p *Processor) Stop() {
	p.lifecycle.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.lifecycle.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.logger.Info("outbox processor stopped")
}

func (p *Processor) IsRunning() bool {
	p.lifecycle.Lock()
	defer p.lifecycle.Unlock()
	return p.cancel != nil
}

func (p *Processor) loop(ctx context.Context, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.ProcessOnce(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("outbox batch failed", "error", err)
			}
		}
	}
}

// ProcessOnce publishes one batch of due messages synchronously. Publish
// failures are recorded on the message; only a failed fetch is returned.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	batch, err := p.repo.GetUnpublished(ctx, p.cfg.BatchSize)
	if err != nil {
		p.update(func(s *Stats, now time.Time) { s.noteError(err, now) })
		return err
	}
	p.update(func(s *Stats, now time.Time) { s.noteBatch(batch, now) })

	for _, msg := range batch {
		p.deliver(ctx, msg)
	}
	return nil
}

func (p *Processor) deliver(ctx context.Context, msg *Message) {
	pubErr := p.publisher.Publish(ctx, msg.RoutingKey, msg.Payload)
	if pubErr == nil {
		if err := p.repo.MarkPublished(ctx, msg.ID); err != nil {
			p.logger.Error("mark published failed", "id", msg.ID, "event_id", msg.EventID, "error", err)
			return
		}
		p.count(outcomePublished, nil)
		return
	}

	attrs := append([]any{
		"id", msg.ID,
		"routing_key", msg.RoutingKey,
		"event_id", msg.EventID,
		"attempt", msg.RetryCount + 1,
		"error", pubErr,
	}, traceAttrs(msg.Metadata)...)
	p.logger.Warn("publish failed", attrs...)

	if p.exhausted(msg) {
		p.count(outcomeDead, pubErr)
		if err := p.repo.MarkDead(ctx, msg.ID, pubErr.Error()); err != nil {
			p.logger.Error("mark dead failed", "id", msg.ID, "error", err)
		}
		return
	}

	p.count(outcomeFailed, pubErr)
	retryAt := time.Now().Add(p.retryBackoff(msg.RetryCount + 1))
	if err := p.repo.MarkFailed(ctx, msg.ID, pubErr.Error(), retryAt); err != nil {
		p.logger.Error("reschedule failed", "id", msg.ID, "error", err)
	}
}

// exhausted reports whether the attempt that just failed was the last one.
func (p *Processor) exhausted(msg *Message) bool {
	return p.cfg.MaxRetries <= 0 || msg.RetryCount+1 >= p.cfg.MaxRetries
}

// retryBackoff is the delay before the given attempt, doubling from
// RetryBackoffBase and capped at RetryBackoffMax.
func (p *Processor) retryBackoff(attempt int) time.Duration {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.cfg.RetryBackoffBase
	if b.InitialInterval <= 0 {
		b.InitialInterval = time.Second
	}
	b.MaxInterval = p.cfg.RetryBackoffMax
	if b.MaxInterval <= 0 {
		b.MaxInterval = time.Minute
	}
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	var delay time.Duration
	for i := 0; i < max(attempt, 1); i++ {
		delay = b.NextBackOff()
	}
	return delay
}

// traceAttrs pulls correlation fields out of stored event metadata for
// logging. Unreadable metadata yields nothing.
func traceAttrs(raw json.RawMessage) []any {
	if len(raw) == 0 {
		return nil
	}
	var md domain.EventMetadata
	if err := json.Unmarshal(raw, &md); err != nil {
		return nil
	}
	return []any{
		"correlation_id", md.CorrelationID.String(),
		"causation_id", md.CausationID.String(),
		"user_id", md.UserID.String(),
	}
}

// Stats is a snapshot of processor activity.
type Stats struct {
	IsRunning       bool
	PublishedCount  uint64
	FailedCount     uint64
	DeadCount       uint64
	LagSeconds      float64
	LastError       string
	LastErrorAt     *time.Time
	LastProcessedAt *time.Time
	OldestMessageAt *time.Time
}

func (s *Stats) noteError(err error, now time.Time) {
	s.LastError = err.Error()
	s.LastErrorAt = &now
}

// noteBatch records when the last poll happened and how far behind the
// oldest message in it is.
func (s *Stats) noteBatch(batch []*Message, now time.Time) {
	s.LastProcessedAt = &now
	if len(batch) == 0 {
		s.LagSeconds = 0
		s.OldestMessageAt = nil
		return
	}
	oldest := batch[0].CreatedAt
	for _, msg := range batch[1:] {
		if msg.CreatedAt.Before(oldest) {
			oldest = msg.CreatedAt
		}
	}
	s.OldestMessageAt = &oldest
	s.LagSeconds = now.Sub(oldest).Seconds()
}

// GetStats returns a copy of the current counters.
func (p *Processor) GetStats() Stats {
	p.statsMu.Lock()
	snapshot := p.stats
	p.statsMu.Unlock()

	snapshot.IsRunning = p.IsRunning()
	return snapshot
}

func (p *Processor) update(fn func(s *Stats, now time.Time)) {
	p.statsMu.Lock()
	defer p.statsMu.Unlock()
	fn(&p.stats, time.Now())
}

func (p *Processor) count(o outcome, err error) {
	p.metrics.Counter("outbox_messages_total", 1, observability.T("outcome", string(o)))
	p.update(func(s *Stats, now time.Time) {
		switch o {
		case outcomePublished:
			s.PublishedCount++
		case outcomeFailed:
			s.FailedCount++
		case outcomeDead:
			s.DeadCount++
		}
		if err != nil {
			s.noteError(err, now)
		}
	})
}
