package models

import (
	"time"

	"github.com/helioslabs/bronzeflow/pkg/errors"
)

// DateLayout is the canonical calendar-day form used throughout the
// pipeline. Lexicographic ordering of this form matches chronological
// ordering, which partition paths and reconciliation rely on.
const DateLayout = "2006-01-02"

// compactLayout is the digits-only form used by warehouse day tables
// (events_YYYYMMDD).
const compactLayout = "20060102"

// DateKey identifies one calendar day in canonical YYYY-MM-DD form.
type DateKey string

// ParseDateKey validates s as a canonical calendar date.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeValidation, "invalid date, expected YYYY-MM-DD")
	}
	// Reject non-canonical spellings that time.Parse accepts after
	// normalization (the partition layout depends on zero padding).
	if t.Format(DateLayout) != s {
		return "", errors.New(errors.ErrorTypeValidation, "invalid date, expected YYYY-MM-DD")
	}
	return DateKey(s), nil
}

// DateKeyFromTime truncates t to its calendar day.
func DateKeyFromTime(t time.Time) DateKey {
	return DateKey(t.Format(DateLayout))
}

// ParseCompactDateKey parses the digits-only YYYYMMDD form used in
// warehouse table suffixes.
func ParseCompactDateKey(s string) (DateKey, error) {
	t, err := time.Parse(compactLayout, s)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeValidation, "invalid compact date, expected YYYYMMDD")
	}
	return DateKeyFromTime(t), nil
}

// String returns the canonical form.
func (d DateKey) String() string { return string(d) }

// Compact returns the digits-only YYYYMMDD form.
func (d DateKey) Compact() string {
	return string(d[:4]) + string(d[5:7]) + string(d[8:10])
}

// Time returns the day at midnight UTC.
func (d DateKey) Time() time.Time {
	t, _ := time.Parse(DateLayout, string(d))
	return t
}

// Next returns the following calendar day.
func (d DateKey) Next() DateKey {
	return DateKeyFromTime(d.Time().AddDate(0, 0, 1))
}

// After reports whether d is chronologically after other.
func (d DateKey) After(other DateKey) bool { return string(d) > string(other) }

// Before reports whether d is chronologically before other.
func (d DateKey) Before(other DateKey) bool { return string(d) < string(other) }

// Partition splits the day into zero-padded year, month, day segments
// for partition path construction.
func (d DateKey) Partition() (year, month, day string) {
	return string(d[:4]), string(d[5:7]), string(d[8:10])
}

// DaysBetween returns the number of calendar days in [start, end]
// inclusive. Callers must ensure start <= end.
func DaysBetween(start, end DateKey) int {
	return int(end.Time().Sub(start.Time())/(24*time.Hour)) + 1
}
