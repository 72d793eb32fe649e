package contract

import (
	"fmt"
	"strings"
	"time"
)

// PeriodType is the cadence a goal is measured over.
type PeriodType string

const (
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
)

// DefaultPeriodType is used when a classification omits or garbles the period.
const DefaultPeriodType = PeriodWeekly

// PeriodTypes lists the cadences the goals table accepts.
var PeriodTypes = []PeriodType{PeriodWeekly, PeriodMonthly}

// IsValid reports whether p is a stored cadence.
func (p PeriodType) IsValid() bool {
	return p == PeriodWeekly || p == PeriodMonthly
}

// String returns the raw value.
func (p PeriodType) String() string { return string(p) }

// NormalizePeriodType maps a raw classifier value onto weekly or monthly.
// Anything else, including an empty value, becomes weekly.
func NormalizePeriodType(raw string) PeriodType {
	p := PeriodType(strings.ToLower(strings.TrimSpace(raw)))
	if p.IsValid() {
		return p
	}
	return DefaultPeriodType
}

// PeriodStart returns midnight of the first day of the period containing now,
// in now's location. Weeks start on Monday.
func PeriodStart(p PeriodType, now time.Time) time.Time {
	y, m, d := now.Date()
	if p == PeriodMonthly {
		return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
	}
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}

// PeriodEnd returns the exclusive end of the period starting at start.
func PeriodEnd(p PeriodType, start time.Time) time.Time {
	if p == PeriodMonthly {
		return start.AddDate(0, 1, 0)
	}
	return start.AddDate(0, 0, 7)
}

// PeriodLabel renders a short human label for a period.
func PeriodLabel(p PeriodType, start time.Time) string {
	if p == PeriodMonthly {
		return start.Format("January 2006")
	}
	return fmt.Sprintf("week of %s", start.Format("Jan 2, 2006"))
}
