// Package apptest builds containers on throwaway SQLite files for adapter
// tests.
package apptest

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/felixgeelhaar/synapse/internal/app"
	classifierDomain "github.com/felixgeelhaar/synapse/internal/classifier/domain"
	"github.com/felixgeelhaar/synapse/pkg/config"
	"github.com/felixgeelhaar/synapse/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// Classifier answers every call with the classification returned by Fn and
// records the contents it saw.
type Classifier struct {
	Fn func(content string) (classifierDomain.Classification, error)

	mu    sync.Mutex
	calls []string
}

// Static returns a Classifier that always answers with a copy of c.
func Static(c classifierDomain.Classification) *Classifier {
	return &Classifier{Fn: func(string) (classifierDomain.Classification, error) {
		return clone(c), nil
	}}
}

// Failing returns a Classifier that always fails with err.
func Failing(err error) *Classifier {
	return &Classifier{Fn: func(string) (classifierDomain.Classification, error) {
		return nil, err
	}}
}

// Classify implements classifierDomain.Classifier.
func (c *Classifier) Classify(_ context.Context, content string) (classifierDomain.Classification, error) {
	c.mu.Lock()
	c.calls = append(c.calls, content)
	c.mu.Unlock()
	return c.Fn(content)
}

// Calls returns the contents classified so far.
func (c *Classifier) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

func clone(c classifierDomain.Classification) classifierDomain.Classification {
	out := make(classifierDomain.Classification, len(c))
	for k, v := range c {
		if m, ok := v.(map[string]any); ok {
			inner := make(map[string]any, len(m))
			for mk, mv := range m {
				inner[mk] = mv
			}
			v = inner
		}
		out[k] = v
	}
	return out
}

// UserID is the single local user of test containers.
var UserID = uuid.MustParse(config.DefaultUserID)

// Config returns local-mode settings on a file in t's temp dir.
func Config(t testing.TB) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:             "test",
		LocalMode:          true,
		DatabaseDriver:     "sqlite",
		SQLitePath:         filepath.Join(t.TempDir(), "synapse.db"),
		UserID:             config.DefaultUserID,
		CacheTTL:           time.Minute,
		OutboxPollInterval: 10 * time.Millisecond,
		OutboxBatchSize:    100,
		OutboxMaxRetries:   3,
		OutboxRetention:    time.Hour,
		SweepBatchSize:     3,
		SweepDebounce:      time.Hour,
	}
}

// Logger discards everything.
func Logger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewContainer builds a seeded local container using classifier, closed on
// cleanup. The sweeper debounce is long enough that list reads never start a
// background pass during a test.
func NewContainer(t testing.TB, classifier classifierDomain.Classifier, opts ...app.Option) *app.Container {
	t.Helper()
	opts = append([]app.Option{
		app.WithClassifier(classifier),
		app.WithMetrics(observability.NewInMemoryMetrics()),
	}, opts...)

	c, err := app.NewContainer(context.Background(), Config(t), Logger(), opts...)
	require.NoError(t, err)
	t.Cleanup(c.Close)
	return c
}
