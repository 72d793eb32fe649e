package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/felixgeelhaar/synapse/pkg/observability"
	"github.com/google/uuid"
)

// View names a cached read model.
type View string

const (
	ViewEntries View = "entries"
	ViewGoals   View = "goals"
	ViewStats   View = "stats"
)

// AllViews is every view a write can make stale.
var AllViews = []View{ViewEntries, ViewGoals, ViewStats}

const (
	keyPrefix   = "synapse:views:"
	stalePrefix = "synapse:stale:"
)

// Views is a JSON cache of per-user read models. A nil *Views is valid and
// caches nothing.
type Views struct {
	store   Store
	ttl     time.Duration
	logger  *slog.Logger
	metrics observability.Metrics
}

// NewViews creates a view cache on store.
func NewViews(store Store, ttl time.Duration, logger *slog.Logger, metrics observability.Metrics) *Views {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &Views{store: store, ttl: ttl, logger: logger, metrics: metrics}
}

func viewPrefix(userID uuid.UUID, view View) string {
	return keyPrefix + userID.String() + ":" + string(view) + ":"
}

// staleKey holds the time of the last MarkStale for (user, view). It lives
// outside viewPrefix so the invalidation that writes it does not delete it.
func staleKey(userID uuid.UUID, view View) string {
	return stalePrefix + userID.String() + ":" + string(view)
}

// Load decodes the cached value for (user, view, variant) into dst. Cache
// errors count as misses.
func (v *Views) Load(ctx context.Context, userID uuid.UUID, view View, variant string, dst any) bool {
	if v == nil {
		return false
	}
	raw, ok, err := v.store.Get(ctx, viewPrefix(userID, view)+variant)
	if err != nil {
		v.logger.WarnContext(ctx, "view cache read failed", "view", view, "error", err)
		ok = false
	}
	if ok && json.Unmarshal(raw, dst) != nil {
		ok = false
	}

	outcome := "miss"
	if ok {
		outcome = "hit"
	}
	v.metrics.Counter(observability.MetricCacheLookups, 1, observability.T("view", string(view)), observability.T("outcome", outcome))
	return ok
}

// Save stores value for (user, view, variant). Failures are logged only.
func (v *Views) Save(ctx context.Context, userID uuid.UUID, view View, variant string, value any) {
	if v == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		v.logger.WarnContext(ctx, "view cache encode failed", "view", view, "error", err)
		return
	}
	if err := v.store.Set(ctx, viewPrefix(userID, view)+variant, raw, v.ttl); err != nil {
		v.logger.WarnContext(ctx, "view cache write failed", "view", view, "error", err)
	}
}

// Fill is a cache miss being loaded. Pass it to SaveFill once the value is
// built.
type Fill struct {
	userID  uuid.UUID
	view    View
	variant string
	started int64
}

// StartFill records when the load behind a miss began.
func (v *Views) StartFill(userID uuid.UUID, view View, variant string) Fill {
	return Fill{userID: userID, view: view, variant: variant, started: time.Now().UnixNano()}
}

// SaveFill stores value unless the view was marked stale after the fill
// started, in which case value may predate the write and is dropped.
func (v *Views) SaveFill(ctx context.Context, fill Fill, value any) {
	if v == nil {
		return
	}
	raw, ok, err := v.store.Get(ctx, staleKey(fill.userID, fill.view))
	if err != nil {
		v.logger.WarnContext(ctx, "view cache read failed", "view", fill.view, "error", err)
		return
	}
	if ok {
		if at, perr := strconv.ParseInt(string(raw), 10, 64); perr != nil || at >= fill.started {
			v.logger.DebugContext(ctx, "dropping view loaded before invalidation", "view", fill.view)
			return
		}
	}
	v.Save(ctx, fill.userID, fill.view, fill.variant, value)
}

// MarkStale drops the listed views for a user, or all views when none are
// given. It never fails the caller.
func (v *Views) MarkStale(ctx context.Context, userID uuid.UUID, views ...View) {
	if v == nil {
		return
	}
	if len(views) == 0 {
		views = AllViews
	}
	now := []byte(strconv.FormatInt(time.Now().UnixNano(), 10))
	for _, view := range views {
		if err := v.store.Set(ctx, staleKey(userID, view), now, v.ttl); err != nil {
			v.logger.WarnContext(ctx, "view cache stale mark failed", "view", view, "error", err)
		}
		if err := v.store.DeletePrefix(ctx, viewPrefix(userID, view)); err != nil {
			v.logger.WarnContext(ctx, "view cache invalidation failed", "view", view, "error", err)
		}
	}
}
