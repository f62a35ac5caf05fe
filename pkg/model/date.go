// Package model provides the data types shared by the apod pipeline: the
// calendar date used as cache identity, the artifact kinds stored per date,
// and the parsed definition document.
package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apoderrors "github.com/glorpus-work/apod/pkg/errors"
)

// DateLayout is the canonical string form of a DateKey.
const DateLayout = "2006-01-02"

// DateKey is a calendar date without time component. The zero value is not a
// valid key. Two keys are equal iff their String forms are equal.
type DateKey struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDateKey returns the normalized key for the given year, month and day.
// Out-of-range values are normalized the way time.Date does.
func NewDateKey(year int, month time.Month, day int) DateKey {
	return DateKeyFromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateKeyFromTime returns the calendar date of t in t's location.
func DateKeyFromTime(t time.Time) DateKey {
	y, m, d := t.Date()
	return DateKey{Year: y, Month: m, Day: d}
}

// Today returns the current UTC calendar date.
func Today() DateKey {
	return DateKeyFromTime(time.Now().UTC())
}

// ParseDateKey parses a YYYY-MM-DD string.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return DateKey{}, fmt.Errorf("%w: %q: %w", apoderrors.ErrInvalidDate, s, err)
	}
	return DateKeyFromTime(t), nil
}

// String returns the canonical YYYY-MM-DD form.
func (d DateKey) String() string {
	return d.Time().Format(DateLayout)
}

// Time returns midnight UTC of the date.
func (d DateKey) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// IsZero reports whether d is the zero key.
func (d DateKey) IsZero() bool {
	return d == DateKey{}
}

// AddDays returns the key n days after d (n may be negative).
func (d DateKey) AddDays(n int) DateKey {
	return DateKeyFromTime(d.Time().AddDate(0, 0, n))
}

// Before reports whether d is strictly earlier than other.
func (d DateKey) Before(other DateKey) bool {
	return d.Time().Before(other.Time())
}

// After reports whether d is strictly later than other.
func (d DateKey) After(other DateKey) bool {
	return d.Time().After(other.Time())
}

// MarshalJSON encodes the key as its canonical string.
func (d DateKey) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a YYYY-MM-DD string. An empty string yields the zero key.
func (d *DateKey) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %w", apoderrors.ErrInvalidDate, err)
	}
	if s == "" {
		*d = DateKey{}
		return nil
	}
	parsed, err := ParseDateKey(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange returns days keys ending at end, newest first: end, end-1, ...
func DateRange(end DateKey, days int) []DateKey {
	if days <= 0 {
		return nil
	}
	out := make([]DateKey, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, end.AddDays(-i))
	}
	return out
}
