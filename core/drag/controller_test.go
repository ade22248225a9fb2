package drag

import (
	"errors"
	"testing"
	"time"

	"github.com/harborworks/slipway/core/staging"
	"github.com/harborworks/slipway/core/timeline"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := timeline.ParseISO(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

// quarter-width track: 910px for 91 days, 10px per day.
func gesture(t *testing.T, kind Kind) Gesture {
	t.Helper()
	return Gesture{
		Kind:    kind,
		UnitID:  "u1",
		StageID: "s1",
		Interval: timeline.Interval{
			Start: day(t, "2024-02-10"),
			End:   day(t, "2024-02-20"),
		},
		PointerX: 400,
		TrackPx:  910,
		Days:     91,
	}
}

func TestMoveShiftsBothEnds(t *testing.T) {
	cs := staging.New()
	c := NewController(cs, true, nil)
	if err := c.Begin(gesture(t, KindMove)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	// +52px at 10px/day rounds to +5 days.
	if err := c.Update(452); err != nil {
		t.Fatalf("update: %v", err)
	}
	e, ok := cs.Get("u1", "s1")
	if !ok {
		t.Fatalf("expected staged edit")
	}
	if timeline.FormatISO(e.Start) != "2024-02-15" || timeline.FormatISO(e.End) != "2024-02-25" {
		t.Fatalf("unexpected interval %s..%s", timeline.FormatISO(e.Start), timeline.FormatISO(e.End))
	}
	if err := c.End(); err != nil {
		t.Fatalf("end: %v", err)
	}
	if _, ok := cs.Get("u1", "s1"); !ok {
		t.Fatalf("edit must survive the end of the gesture")
	}
}

func TestResizeStartClampsAtEnd(t *testing.T) {
	cs := staging.New()
	c := NewController(cs, true, nil)
	if err := c.Begin(gesture(t, KindResizeStart)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	// +300px = +30 days: the new start would pass the end.
	if err := c.Update(700); err != nil {
		t.Fatalf("update: %v", err)
	}
	e, _ := cs.Get("u1", "s1")
	if timeline.FormatISO(e.Start) != "2024-02-19" {
		t.Fatalf("start should clamp to end-1, got %s", timeline.FormatISO(e.Start))
	}
	if timeline.FormatISO(e.End) != "2024-02-20" {
		t.Fatalf("end must not move on a resize-start, got %s", timeline.FormatISO(e.End))
	}
}

func TestResizeEndClampsAtStart(t *testing.T) {
	// Scenario: dayDelta -20 on a short stage forces minimum duration,
	// never an inverted interval.
	cs := staging.New()
	c := NewController(cs, true, nil)
	g := gesture(t, KindResizeEnd)
	g.Interval.End = day(t, "2024-02-12") // 3-day stage
	if err := c.Begin(g); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := c.Update(200); err != nil { // -200px = -20 days
		t.Fatalf("update: %v", err)
	}
	e, _ := cs.Get("u1", "s1")
	if !e.End.After(e.Start) {
		t.Fatalf("interval inverted: %s..%s", timeline.FormatISO(e.Start), timeline.FormatISO(e.End))
	}
	if timeline.FormatISO(e.End) != "2024-02-11" {
		t.Fatalf("end should clamp to start+1, got %s", timeline.FormatISO(e.End))
	}
}

func TestResizeEndGrows(t *testing.T) {
	cs := staging.New()
	c := NewController(cs, true, nil)
	if err := c.Begin(gesture(t, KindResizeEnd)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := c.Update(430); err != nil { // +3 days
		t.Fatalf("update: %v", err)
	}
	e, _ := cs.Get("u1", "s1")
	if timeline.FormatISO(e.Start) != "2024-02-10" || timeline.FormatISO(e.End) != "2024-02-23" {
		t.Fatalf("unexpected interval %s..%s", timeline.FormatISO(e.Start), timeline.FormatISO(e.End))
	}
}

func TestUpdateSuppressesRedundantWrites(t *testing.T) {
	cs := staging.New()
	c := NewController(cs, true, nil)
	if err := c.Begin(gesture(t, KindMove)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	// Sub-half-day wiggle rounds to delta 0: nothing staged yet.
	if err := c.Update(404); err != nil {
		t.Fatalf("update: %v", err)
	}
	if cs.Len() != 0 {
		t.Fatalf("zero delta must not create an edit")
	}
	if err := c.Update(420); err != nil { // +2 days
		t.Fatalf("update: %v", err)
	}
	first, _ := cs.Get("u1", "s1")
	// Same rounded delta again: the staged edit must be left alone.
	if err := c.Update(421); err != nil {
		t.Fatalf("update: %v", err)
	}
	second, _ := cs.Get("u1", "s1")
	if !first.Start.Equal(second.Start) || !first.End.Equal(second.End) {
		t.Fatalf("same delta rewrote the edit")
	}
	if cs.Len() != 1 {
		t.Fatalf("expected a single staged edit")
	}
}

func TestLastUpdateWins(t *testing.T) {
	cs := staging.New()
	c := NewController(cs, true, nil)
	if err := c.Begin(gesture(t, KindMove)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	for _, x := range []float64{450, 500, 380} {
		if err := c.Update(x); err != nil {
			t.Fatalf("update: %v", err)
		}
	}
	if err := c.End(); err != nil {
		t.Fatalf("end: %v", err)
	}
	e, _ := cs.Get("u1", "s1")
	// Final pointer at 380 is -2 days from the origin.
	if timeline.FormatISO(e.Start) != "2024-02-08" {
		t.Fatalf("last update must determine the edit, got start %s", timeline.FormatISO(e.Start))
	}
}

func TestSequentialDragsOverwrite(t *testing.T) {
	cs := staging.New()
	c := NewController(cs, true, nil)
	g := gesture(t, KindMove)
	if err := c.Begin(g); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := c.Update(450); err != nil { // +5 days
		t.Fatalf("update: %v", err)
	}
	if err := c.End(); err != nil {
		t.Fatalf("end: %v", err)
	}
	// Second gesture on the same stage, from the staged interval.
	e, _ := cs.Get("u1", "s1")
	g.Interval = timeline.Interval{Start: e.Start, End: e.End}
	if err := c.Begin(g); err != nil {
		t.Fatalf("second begin: %v", err)
	}
	if err := c.Update(370); err != nil { // -3 days
		t.Fatalf("update: %v", err)
	}
	if err := c.End(); err != nil {
		t.Fatalf("end: %v", err)
	}
	if cs.Len() != 1 {
		t.Fatalf("two drags on one stage must stay a single edit, got %d", cs.Len())
	}
	e, _ = cs.Get("u1", "s1")
	if timeline.FormatISO(e.Start) != "2024-02-12" {
		t.Fatalf("second drag's interval must win, got start %s", timeline.FormatISO(e.Start))
	}
}

func TestBeginRequiresPermission(t *testing.T) {
	c := NewController(staging.New(), false, nil)
	if err := c.Begin(gesture(t, KindMove)); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestStateMachineTransitions(t *testing.T) {
	c := NewController(staging.New(), true, nil)
	if err := c.Update(10); !errors.Is(err, ErrNotDragging) {
		t.Fatalf("update while idle: %v", err)
	}
	if err := c.End(); !errors.Is(err, ErrNotDragging) {
		t.Fatalf("end while idle: %v", err)
	}
	if err := c.Begin(gesture(t, KindMove)); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if !c.Dragging() {
		t.Fatalf("expected Dragging state")
	}
	if err := c.Begin(gesture(t, KindMove)); !errors.Is(err, ErrAlreadyDragging) {
		t.Fatalf("nested begin: %v", err)
	}
	if err := c.End(); err != nil {
		t.Fatalf("end: %v", err)
	}
	if c.Dragging() {
		t.Fatalf("expected Idle state after end")
	}
}

func TestBeginRejectsBadGeometry(t *testing.T) {
	c := NewController(staging.New(), true, nil)
	g := gesture(t, KindMove)
	g.Days = 0
	if err := c.Begin(g); err == nil {
		t.Fatalf("expected geometry error")
	}
	g = gesture(t, KindMove)
	g.Kind = Kind("twist")
	if err := c.Begin(g); err == nil {
		t.Fatalf("expected unknown kind error")
	}
}
