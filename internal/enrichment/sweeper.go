// Package enrichment adds a visual emoji tag to entries that lack one. It is
// best effort: failures are logged and counted, never returned to readers.
package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	classifierDomain "github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/felixgeelhaar/synapse/internal/entries/application/commands"
	"github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	"github.com/felixgeelhaar/synapse/pkg/observability"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Outcomes counted under observability.MetricEnrichmentAttempts.
const (
	OutcomeEnriched = "enriched"
	OutcomeNoEmoji  = "no_emoji"
	OutcomeSkipped  = "skipped"
	OutcomeFailed   = "failed"
)

// Enricher stores an emoji on an entry.
type Enricher interface {
	Handle(ctx context.Context, cmd commands.EnrichEntryCommand) error
}

// Config tunes a Sweeper.
type Config struct {
	// BatchSize caps the classifier calls per pass.
	BatchSize int
	// Debounce is how long Trigger waits for the list to settle.
	Debounce time.Duration
	// MaxWait bounds how long steady triggering can postpone a pass.
	MaxWait time.Duration
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{BatchSize: 3, Debounce: 500 * time.Millisecond, MaxWait: 2 * time.Second}
}

// Sweeper re-classifies untagged entries and stores the emoji the classifier
// suggests.
type Sweeper struct {
	classifier classifierDomain.Classifier
	enricher   Enricher
	inFlight   *InFlight
	config     Config
	logger     *slog.Logger
	metrics    observability.Metrics

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	timer    *time.Timer
	deadline time.Time
	pending  map[uuid.UUID][]queries.EntryDTO
	stopped  bool
}

// NewSweeper creates a sweeper that shares the process-wide in-flight set.
func NewSweeper(classifier classifierDomain.Classifier, enricher Enricher, config Config, logger *slog.Logger, metrics observability.Metrics) *Sweeper {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultConfig().BatchSize
	}
	if config.Debounce <= 0 {
		config.Debounce = DefaultConfig().Debounce
	}
	if config.MaxWait < config.Debounce {
		config.MaxWait = max(DefaultConfig().MaxWait, 4*config.Debounce)
	}
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		classifier: classifier,
		enricher:   enricher,
		inFlight:   processInFlight,
		config:     config,
		logger:     logger.With("component", "enrichment"),
		metrics:    metrics,
		ctx:        ctx,
		cancel:     cancel,
		pending:    map[uuid.UUID][]queries.EntryDTO{},
	}
}

// WithInFlight replaces the shared in-flight set.
func (s *Sweeper) WithInFlight(set *InFlight) *Sweeper {
	s.inFlight = set
	return s
}

// Trigger schedules a pass over entries once the debounce interval passes
// without another Trigger, or at the latest MaxWait after the first one.
// Each list belongs to one user and only that user's latest list is kept.
// It never blocks.
func (s *Sweeper) Trigger(entries []queries.EntryDTO) {
	if len(entries) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.pending[entries[0].UserID] = entries

	now := time.Now()
	if s.timer == nil {
		s.deadline = now.Add(s.config.MaxWait)
	} else {
		s.timer.Stop()
	}
	delay := min(s.config.Debounce, s.deadline.Sub(now))
	s.timer = time.AfterFunc(max(delay, 0), s.fire)
}

func (s *Sweeper) fire() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	lists := s.pending
	s.pending = map[uuid.UUID][]queries.EntryDTO{}
	s.timer = nil
	s.wg.Add(1)
	s.mu.Unlock()

	defer s.wg.Done()
	for _, entries := range lists {
		s.Sweep(s.ctx, entries)
	}
}

// Sweep enriches at most BatchSize untagged entries that are not already in
// flight and waits for them. It returns how many entries it attempted.
func (s *Sweeper) Sweep(ctx context.Context, entries []queries.EntryDTO) int {
	var batch []queries.EntryDTO
	for _, e := range entries {
		if len(batch) == s.config.BatchSize {
			break
		}
		if e.Emoji() != "" || !s.inFlight.TryAcquire(e.ID) {
			continue
		}
		batch = append(batch, e)
	}
	if len(batch) == 0 {
		return 0
	}

	var g errgroup.Group
	for _, e := range batch {
		g.Go(func() error {
			defer s.inFlight.Release(e.ID)
			outcome := s.enrich(ctx, e)
			s.metrics.Counter(observability.MetricEnrichmentAttempts, 1, observability.T("outcome", outcome))
			return nil
		})
	}
	_ = g.Wait()
	return len(batch)
}

func (s *Sweeper) enrich(ctx context.Context, e queries.EntryDTO) string {
	classification, err := s.classifier.Classify(ctx, e.Content)
	if err != nil {
		s.logger.DebugContext(ctx, "classify for emoji failed", "entry_id", e.ID, "error", err)
		return OutcomeFailed
	}
	emoji := classification.Emoji()
	if emoji == "" {
		return OutcomeNoEmoji
	}

	err = s.enricher.Handle(ctx, commands.EnrichEntryCommand{UserID: e.UserID, EntryID: e.ID, Emoji: emoji})
	switch {
	case err == nil:
		return OutcomeEnriched
	case errors.Is(err, commands.ErrAlreadyEnriched):
		return OutcomeSkipped
	default:
		s.logger.DebugContext(ctx, "store emoji failed", "entry_id", e.ID, "error", err)
		return OutcomeFailed
	}
}

// Stop cancels a scheduled pass, aborts running classifier calls and waits
// for them to return. Later triggers are ignored.
func (s *Sweeper) Stop() {
	s.mu.Lock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
}
