package timeline

import (
	"fmt"
	"time"
)

// Granularity selects how much calendar a view window spans.
type Granularity string

const (
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
)

// months returns the span of the granularity in whole months.
func (g Granularity) months() (int, error) {
	switch g {
	case GranularityMonth:
		return 1, nil
	case GranularityQuarter:
		return 3, nil
	case GranularityYear:
		return 12, nil
	}
	return 0, fmt.Errorf("unknown granularity %q", g)
}

// ViewWindow is the visible date range of the board. It is derived from
// an anchor date and a granularity and holds no state of its own.
type ViewWindow struct {
	Start     time.Time
	End       time.Time
	TotalDays int
}

// Contains reports whether the calendar day of t falls inside the window.
func (w ViewWindow) Contains(t time.Time) bool {
	d := truncateDay(t)
	return !d.Before(w.Start) && !d.After(w.End)
}

// Column is one day cell of the board grid.
type Column struct {
	Date         time.Time
	IsWeekend    bool
	IsToday      bool
	IsMonthStart bool
}

// ComputeWindow derives the visible window for an anchor date.
// Month spans the anchor's month, quarter spans the anchor's month plus
// the two following ones, year spans Jan 1 through Dec 31 of the
// anchor's year.
func ComputeWindow(anchor time.Time, g Granularity) (ViewWindow, error) {
	anchor = truncateDay(anchor)
	var start, end time.Time
	switch g {
	case GranularityMonth:
		start = firstOfMonth(anchor)
		end = start.AddDate(0, 1, -1)
	case GranularityQuarter:
		start = firstOfMonth(anchor)
		end = start.AddDate(0, 3, -1)
	case GranularityYear:
		start = time.Date(anchor.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
		end = time.Date(anchor.Year(), time.December, 31, 0, 0, 0, 0, time.UTC)
	default:
		return ViewWindow{}, fmt.Errorf("unknown granularity %q", g)
	}
	return ViewWindow{Start: start, End: end, TotalDays: DaysBetween(start, end) + 1}, nil
}

// Columns builds the day-by-day grid for the window. today marks the
// IsToday flag; callers normally pass time.Now().
func Columns(w ViewWindow, today time.Time) []Column {
	today = truncateDay(today)
	cols := make([]Column, 0, w.TotalDays)
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		cols = append(cols, Column{
			Date:         d,
			IsWeekend:    d.Weekday() == time.Saturday || d.Weekday() == time.Sunday,
			IsToday:      d.Equal(today),
			IsMonthStart: d.Day() == 1,
		})
	}
	return cols
}

// ShiftAnchor moves the anchor by steps granularity units. Negative
// steps navigate backwards. The anchor is normalized to the first day of
// its month so repeated navigation is deterministic regardless of the
// starting day.
func ShiftAnchor(anchor time.Time, g Granularity, steps int) (time.Time, error) {
	m, err := g.months()
	if err != nil {
		return time.Time{}, err
	}
	return firstOfMonth(truncateDay(anchor)).AddDate(0, m*steps, 0), nil
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
