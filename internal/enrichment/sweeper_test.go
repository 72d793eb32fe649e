package enrichment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	classifierDomain "github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/felixgeelhaar/synapse/internal/entries/application/commands"
	"github.com/felixgeelhaar/synapse/internal/entries/application/queries"
	"github.com/felixgeelhaar/synapse/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubClassifier counts calls and answers with a fixed emoji.
type stubClassifier struct {
	mu      sync.Mutex
	calls   []string
	emoji   string
	err     error
	block   chan struct{}
	started chan struct{}
}

func (c *stubClassifier) Classify(ctx context.Context, content string) (classifierDomain.Classification, error) {
	c.mu.Lock()
	c.calls = append(c.calls, content)
	c.mu.Unlock()

	if c.started != nil {
		c.started <- struct{}{}
	}
	if c.block != nil {
		select {
		case <-c.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.err != nil {
		return nil, c.err
	}
	return classifierDomain.Classification{"metadata": map[string]any{"emoji": c.emoji}}, nil
}

func (c *stubClassifier) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

type recordingEnricher struct {
	mu   sync.Mutex
	cmds []commands.EnrichEntryCommand
	err  error
}

func (e *recordingEnricher) Handle(_ context.Context, cmd commands.EnrichEntryCommand) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cmds = append(e.cmds, cmd)
	return e.err
}

func untagged(content string) queries.EntryDTO {
	return queries.EntryDTO{ID: uuid.New(), UserID: uuid.New(), Content: content, Metadata: map[string]any{}}
}

func tagged(content, emoji string) queries.EntryDTO {
	return queries.EntryDTO{ID: uuid.New(), UserID: uuid.New(), Content: content, Metadata: map[string]any{"emoji": emoji}}
}

func newTestSweeper(c classifierDomain.Classifier, e Enricher, metrics observability.Metrics) *Sweeper {
	return NewSweeper(c, e, Config{BatchSize: 3, Debounce: 10 * time.Millisecond}, nil, metrics).
		WithInFlight(NewInFlight())
}

func TestSweeper_Sweep(t *testing.T) {
	ctx := context.Background()

	t.Run("at most three calls per pass", func(t *testing.T) {
		classifier, enricher := &stubClassifier{emoji: "📝"}, &recordingEnricher{}
		metrics := observability.NewInMemoryMetrics()
		s := newTestSweeper(classifier, enricher, metrics)
		defer s.Stop()

		entries := []queries.EntryDTO{untagged("a"), untagged("b"), untagged("c"), untagged("d"), untagged("e")}
		attempted := s.Sweep(ctx, entries)

		assert.Equal(t, 3, attempted)
		assert.ElementsMatch(t, []string{"a", "b", "c"}, classifier.Calls())
		require.Len(t, enricher.cmds, 3)
		assert.Equal(t, "📝", enricher.cmds[0].Emoji)
		assert.Equal(t, int64(3), metrics.GetCounter(observability.MetricEnrichmentAttempts, observability.T("outcome", OutcomeEnriched)))
		assert.Zero(t, s.inFlight.Len(), "every candidate is released")

		attempted = s.Sweep(ctx, entries[3:])
		assert.Equal(t, 2, attempted)
	})

	t.Run("tagged entries are never classified", func(t *testing.T) {
		classifier := &stubClassifier{emoji: "📝"}
		s := newTestSweeper(classifier, &recordingEnricher{}, nil)
		defer s.Stop()

		attempted := s.Sweep(ctx, []queries.EntryDTO{tagged("a", "🍎"), tagged("b", "🍌")})

		assert.Zero(t, attempted)
		assert.Empty(t, classifier.Calls())
	})

	t.Run("in-flight entries are skipped", func(t *testing.T) {
		classifier := &stubClassifier{emoji: "📝"}
		s := newTestSweeper(classifier, &recordingEnricher{}, nil)
		defer s.Stop()
		busy := untagged("busy")
		require.True(t, s.inFlight.TryAcquire(busy.ID))

		attempted := s.Sweep(ctx, []queries.EntryDTO{busy, untagged("free")})

		assert.Equal(t, 1, attempted)
		assert.Equal(t, []string{"free"}, classifier.Calls())
		assert.True(t, s.inFlight.Contains(busy.ID))
	})

	t.Run("errors are swallowed and released", func(t *testing.T) {
		classifier := &stubClassifier{err: errors.New("quota exceeded")}
		enricher := &recordingEnricher{}
		metrics := observability.NewInMemoryMetrics()
		s := newTestSweeper(classifier, enricher, metrics)
		defer s.Stop()
		entry := untagged("a")

		assert.Equal(t, 1, s.Sweep(ctx, []queries.EntryDTO{entry}))
		assert.Equal(t, 1, s.Sweep(ctx, []queries.EntryDTO{entry}), "a failed entry is retried on the next pass")

		assert.Empty(t, enricher.cmds)
		assert.False(t, s.inFlight.Contains(entry.ID))
		assert.Equal(t, int64(2), metrics.GetCounter(observability.MetricEnrichmentAttempts, observability.T("outcome", OutcomeFailed)))
	})

	t.Run("classification without emoji writes nothing", func(t *testing.T) {
		enricher := &recordingEnricher{}
		metrics := observability.NewInMemoryMetrics()
		s := newTestSweeper(&stubClassifier{emoji: "  "}, enricher, metrics)
		defer s.Stop()

		s.Sweep(ctx, []queries.EntryDTO{untagged("a")})

		assert.Empty(t, enricher.cmds)
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricEnrichmentAttempts, observability.T("outcome", OutcomeNoEmoji)))
	})

	t.Run("already enriched counts as skipped", func(t *testing.T) {
		metrics := observability.NewInMemoryMetrics()
		s := newTestSweeper(&stubClassifier{emoji: "📝"}, &recordingEnricher{err: commands.ErrAlreadyEnriched}, metrics)
		defer s.Stop()

		s.Sweep(ctx, []queries.EntryDTO{untagged("a")})

		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricEnrichmentAttempts, observability.T("outcome", OutcomeSkipped)))
	})
}

func ownedBy(userID uuid.UUID, content string) queries.EntryDTO {
	e := untagged(content)
	e.UserID = userID
	return e
}

func TestSweeper_TriggerDebounces(t *testing.T) {
	classifier := &stubClassifier{emoji: "📝"}
	s := newTestSweeper(classifier, &recordingEnricher{}, nil)
	defer s.Stop()

	user := uuid.New()
	s.Trigger(nil)
	s.Trigger([]queries.EntryDTO{ownedBy(user, "first")})
	s.Trigger([]queries.EntryDTO{ownedBy(user, "second")})

	require.Eventually(t, func() bool { return len(classifier.Calls()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"second"}, classifier.Calls())
}

func TestSweeper_TriggerKeepsEachUsersList(t *testing.T) {
	classifier := &stubClassifier{emoji: "📝"}
	s := newTestSweeper(classifier, &recordingEnricher{}, nil)
	defer s.Stop()

	s.Trigger([]queries.EntryDTO{ownedBy(uuid.New(), "alice")})
	s.Trigger([]queries.EntryDTO{ownedBy(uuid.New(), "bob")})

	require.Eventually(t, func() bool { return len(classifier.Calls()) == 2 }, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{"alice", "bob"}, classifier.Calls())
}

func TestSweeper_SteadyTriggersStillFire(t *testing.T) {
	classifier := &stubClassifier{emoji: "📝"}
	s := NewSweeper(classifier, &recordingEnricher{}, Config{
		BatchSize: 3,
		Debounce:  30 * time.Millisecond,
		MaxWait:   100 * time.Millisecond,
	}, nil, nil).WithInFlight(NewInFlight())
	defer s.Stop()

	user := uuid.New()
	stop := time.After(400 * time.Millisecond)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
loop:
	for {
		select {
		case <-stop:
			break loop
		case <-ticker.C:
			s.Trigger([]queries.EntryDTO{ownedBy(user, "busy")})
			if len(classifier.Calls()) > 0 {
				break loop
			}
		}
	}

	assert.NotEmpty(t, classifier.Calls(), "a pass ran while triggers kept arriving")
}

func TestSweeper_StopAbortsRunningPass(t *testing.T) {
	classifier := &stubClassifier{emoji: "📝", block: make(chan struct{}), started: make(chan struct{}, 3)}
	s := newTestSweeper(classifier, &recordingEnricher{}, nil)

	s.Trigger([]queries.EntryDTO{untagged("slow")})
	select {
	case <-classifier.started:
	case <-time.After(time.Second):
		t.Fatal("pass did not start")
	}

	s.Stop()
	s.Trigger([]queries.EntryDTO{untagged("ignored")})

	assert.Equal(t, []string{"slow"}, classifier.Calls())
	assert.Zero(t, s.inFlight.Len())
}

func TestInFlight(t *testing.T) {
	set := NewInFlight()
	id := uuid.New()

	var acquired atomic.Int32
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if set.TryAcquire(id) {
				acquired.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), acquired.Load())
	set.Release(id)
	assert.True(t, set.TryAcquire(id))
}
