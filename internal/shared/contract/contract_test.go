package contract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEntryType(t *testing.T) {
	tests := []struct {
		raw  string
		want EntryType
	}{
		{"task", EntryTypeTask},
		{" Insight ", EntryTypeInsight},
		{"BOOKMARK", EntryTypeBookmark},
		{"banana", EntryTypeNote},
		{"", EntryTypeNote},
		{"goal", EntryTypeNote},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeEntryType(tt.raw))
		})
	}
}

func TestIsGoal(t *testing.T) {
	assert.True(t, IsGoal("goal"))
	assert.True(t, IsGoal(" GOAL"))
	assert.False(t, IsGoal("goals"))
	assert.False(t, IsGoal("task"))
}

func TestClassifierEntryTypes_IncludesGoal(t *testing.T) {
	assert.Contains(t, ClassifierEntryTypes, EntryTypeGoal)
	assert.NotContains(t, StoredEntryTypes, EntryTypeGoal)
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("in-progress")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, s)

	s, err = ParseStatus("Done")
	require.NoError(t, err)
	assert.Equal(t, StatusDone, s)

	_, err = ParseStatus("blocked")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestStatusToggle(t *testing.T) {
	assert.Equal(t, StatusDone, StatusPending.Toggle())
	assert.Equal(t, StatusDone, StatusInProgress.Toggle())
	assert.Equal(t, StatusPending, StatusDone.Toggle())
}

func TestNormalizePeriodType(t *testing.T) {
	assert.Equal(t, PeriodMonthly, NormalizePeriodType("Monthly"))
	assert.Equal(t, PeriodWeekly, NormalizePeriodType("weekly"))
	assert.Equal(t, PeriodWeekly, NormalizePeriodType(""))
	assert.Equal(t, PeriodWeekly, NormalizePeriodType("daily"))
}

func TestPeriodStart(t *testing.T) {
	t.Run("weekly aligns to monday", func(t *testing.T) {
		// Sunday
		now := time.Date(2026, 10, 25, 18, 30, 0, 0, time.UTC)
		start := PeriodStart(PeriodWeekly, now)
		assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Monday, start.Weekday())
	})

	t.Run("weekly on a monday is the same day", func(t *testing.T) {
		now := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC), PeriodStart(PeriodWeekly, now))
	})

	t.Run("weekly crossing a month boundary", func(t *testing.T) {
		now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC) // Thursday
		assert.Equal(t, time.Date(2026, 9, 28, 0, 0, 0, 0, time.UTC), PeriodStart(PeriodWeekly, now))
	})

	t.Run("monthly is the first of the month", func(t *testing.T) {
		now := time.Date(2026, 2, 17, 23, 59, 0, 0, time.UTC)
		assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), PeriodStart(PeriodMonthly, now))
	})
}

func TestPeriodEndAndLabel(t *testing.T) {
	start := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, start.AddDate(0, 0, 7), PeriodEnd(PeriodWeekly, start))
	assert.Equal(t, "week of Oct 19, 2026", PeriodLabel(PeriodWeekly, start))

	month := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), PeriodEnd(PeriodMonthly, month))
	assert.Equal(t, "October 2026", PeriodLabel(PeriodMonthly, month))
}

func TestNormalizePriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, NormalizePriority("HIGH"))
	assert.Equal(t, PriorityMedium, NormalizePriority("whenever"))
}
