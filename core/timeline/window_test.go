package timeline

import (
	"testing"
	"time"
)

func TestComputeWindowMonth(t *testing.T) {
	w, err := ComputeWindow(mustParse(t, "2024-02-15"), GranularityMonth)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if FormatISO(w.Start) != "2024-02-01" || FormatISO(w.End) != "2024-02-29" {
		t.Fatalf("unexpected window %s..%s", FormatISO(w.Start), FormatISO(w.End))
	}
	if w.TotalDays != 29 {
		t.Fatalf("expected 29 days, got %d", w.TotalDays)
	}
}

func TestComputeWindowQuarter(t *testing.T) {
	w, err := ComputeWindow(mustParse(t, "2024-01-01"), GranularityQuarter)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if FormatISO(w.Start) != "2024-01-01" || FormatISO(w.End) != "2024-03-31" {
		t.Fatalf("unexpected window %s..%s", FormatISO(w.Start), FormatISO(w.End))
	}
	if w.TotalDays != 91 {
		t.Fatalf("expected 91 days, got %d", w.TotalDays)
	}
}

func TestComputeWindowQuarterMidMonthAnchor(t *testing.T) {
	// The anchor's day of month must not influence the window.
	w, err := ComputeWindow(mustParse(t, "2024-11-20"), GranularityQuarter)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if FormatISO(w.Start) != "2024-11-01" || FormatISO(w.End) != "2025-01-31" {
		t.Fatalf("unexpected window %s..%s", FormatISO(w.Start), FormatISO(w.End))
	}
}

func TestComputeWindowYear(t *testing.T) {
	w, err := ComputeWindow(mustParse(t, "2023-07-04"), GranularityYear)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if FormatISO(w.Start) != "2023-01-01" || FormatISO(w.End) != "2023-12-31" {
		t.Fatalf("unexpected window %s..%s", FormatISO(w.Start), FormatISO(w.End))
	}
	if w.TotalDays != 365 {
		t.Fatalf("expected 365 days, got %d", w.TotalDays)
	}
}

func TestComputeWindowUnknownGranularity(t *testing.T) {
	if _, err := ComputeWindow(time.Now(), Granularity("decade")); err == nil {
		t.Fatalf("expected error for unknown granularity")
	}
}

func TestColumnsFlags(t *testing.T) {
	w, err := ComputeWindow(mustParse(t, "2024-01-01"), GranularityMonth)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	today := mustParse(t, "2024-01-15")
	cols := Columns(w, today)
	if len(cols) != 31 {
		t.Fatalf("expected 31 columns, got %d", len(cols))
	}
	if !cols[0].IsMonthStart {
		t.Fatalf("Jan 1 should be flagged month start")
	}
	if cols[1].IsMonthStart {
		t.Fatalf("Jan 2 should not be flagged month start")
	}
	// 2024-01-06 is a Saturday, 2024-01-07 a Sunday.
	if !cols[5].IsWeekend || !cols[6].IsWeekend {
		t.Fatalf("Jan 6/7 should be weekend")
	}
	if cols[7].IsWeekend {
		t.Fatalf("Jan 8 should be a weekday")
	}
	for i, c := range cols {
		if c.IsToday != (i == 14) {
			t.Fatalf("column %d: unexpected IsToday=%v", i, c.IsToday)
		}
	}
}

func TestShiftAnchorRoundTrips(t *testing.T) {
	anchor := mustParse(t, "2024-01-31")
	next, err := ShiftAnchor(anchor, GranularityMonth, 1)
	if err != nil {
		t.Fatalf("shift: %v", err)
	}
	// Normalized to the first of the month, so Jan 31 cannot overflow
	// into March.
	if FormatISO(next) != "2024-02-01" {
		t.Fatalf("expected 2024-02-01, got %s", FormatISO(next))
	}
	prev, err := ShiftAnchor(next, GranularityMonth, -1)
	if err != nil {
		t.Fatalf("shift back: %v", err)
	}
	if FormatISO(prev) != "2024-01-01" {
		t.Fatalf("expected 2024-01-01, got %s", FormatISO(prev))
	}
}

func TestShiftAnchorQuarterAndYear(t *testing.T) {
	anchor := mustParse(t, "2024-11-05")
	q, err := ShiftAnchor(anchor, GranularityQuarter, 1)
	if err != nil {
		t.Fatalf("shift: %v", err)
	}
	if FormatISO(q) != "2025-02-01" {
		t.Fatalf("expected 2025-02-01, got %s", FormatISO(q))
	}
	y, err := ShiftAnchor(anchor, GranularityYear, -1)
	if err != nil {
		t.Fatalf("shift: %v", err)
	}
	if FormatISO(y) != "2023-11-01" {
		t.Fatalf("expected 2023-11-01, got %s", FormatISO(y))
	}
}
