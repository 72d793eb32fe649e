package database

import (
	"fmt"
	"time"
)

// timeLayout is how timestamps are stored in SQLite TEXT columns. It sorts
// lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// TimeArg converts t into a query argument for driver d.
func (d Driver) TimeArg(t time.Time) any {
	if d == DriverSQLite {
		return t.UTC().Format(timeLayout)
	}
	return t.UTC()
}

// NullTimeArg is TimeArg for optional timestamps.
func (d Driver) NullTimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return d.TimeArg(*t)
}

// Timestamp scans a timestamp stored either natively (PostgreSQL) or as text
// (SQLite). A NULL leaves Valid false.
type Timestamp struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (ts *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		ts.Time, ts.Valid = time.Time{}, false
		return nil
	case time.Time:
		ts.Time, ts.Valid = v.UTC(), true
		return nil
	case string:
		return ts.parse(v)
	case []byte:
		return ts.parse(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}

func (ts *Timestamp) parse(s string) error {
	for _, layout := range []string{timeLayout, time.RFC3339Nano, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			ts.Time, ts.Valid = t.UTC(), true
			return nil
		}
	}
	return fmt.Errorf("invalid timestamp %q", s)
}

// Ptr returns nil for NULL timestamps.
func (ts Timestamp) Ptr() *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
