package timeline

import (
	"errors"
	"fmt"
	"time"
)

// ISODate is the calendar-date layout used throughout the board.
const ISODate = "2006-01-02"

// ErrInvalidDate is returned when a date string cannot be parsed as an
// ISO-8601 calendar date. Dates are never silently coerced.
var ErrInvalidDate = errors.New("invalid date")

// ParseISO parses an ISO-8601 calendar date (YYYY-MM-DD) into a UTC
// midnight instant.
func ParseISO(s string) (time.Time, error) {
	t, err := time.ParseInLocation(ISODate, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// FormatISO renders t as an ISO-8601 calendar date.
func FormatISO(t time.Time) string {
	return t.Format(ISODate)
}

// truncateDay drops the time-of-day component, keeping the calendar day
// in UTC.
func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AddDays shifts t by n calendar days. n may be negative.
func AddDays(t time.Time, n int) time.Time {
	return truncateDay(t).AddDate(0, 0, n)
}

// DaysBetween returns the number of calendar days from a to b. The
// result is negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(truncateDay(b).Sub(truncateDay(a)) / (24 * time.Hour))
}
