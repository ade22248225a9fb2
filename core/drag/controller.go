package drag

import (
	"errors"
	"fmt"
	"math"

	"github.com/harborworks/slipway/core/logger"
	"github.com/harborworks/slipway/core/staging"
	"github.com/harborworks/slipway/core/timeline"
)

// Kind says which handle of the stage bar the planner grabbed.
type Kind string

const (
	KindMove        Kind = "move"
	KindResizeStart Kind = "resize_start"
	KindResizeEnd   Kind = "resize_end"
)

var (
	// ErrPermissionDenied is returned by Begin when the session lacks
	// edit permission.
	ErrPermissionDenied = errors.New("edit permission required")
	// ErrNotDragging is returned by Update and End outside a gesture.
	ErrNotDragging = errors.New("no drag in progress")
	// ErrAlreadyDragging is returned by Begin during a gesture.
	ErrAlreadyDragging = errors.New("drag already in progress")
)

// Gesture captures everything Begin needs to know about a starting drag.
type Gesture struct {
	Kind     Kind
	UnitID   string
	StageID  string
	Interval timeline.Interval // effective interval when the drag began
	PointerX float64           // pointer X at press, in pixels
	TrackPx  float64           // rendered width of the timeline track
	Days     int               // ViewWindow.TotalDays
}

// Controller is the finite-state machine owning one in-progress drag
// gesture. It is Idle between gestures and Dragging from Begin to End;
// it converts pointer movement into whole-day deltas and writes the
// resulting interval into the session's staging area. Ending a gesture
// keeps the staged edit: edits accumulate until the planner commits or
// discards them as a batch.
type Controller struct {
	changes  *staging.ChangeSet
	canEdit  bool
	log      logger.Logger
	dragging bool
	gesture  Gesture
	// lastDelta is the day delta applied by the previous Update call,
	// used to suppress redundant staging writes.
	lastDelta int
}

// NewController creates an Idle controller staging edits into changes.
// log may be nil.
func NewController(changes *staging.ChangeSet, canEdit bool, log logger.Logger) *Controller {
	if log == nil {
		log = logger.Nop{}
	}
	return &Controller{changes: changes, canEdit: canEdit, log: log}
}

// Dragging reports whether a gesture is in flight.
func (c *Controller) Dragging() bool { return c.dragging }

// Gesture returns the in-flight gesture. ok is false when Idle.
func (c *Controller) Gesture() (Gesture, bool) {
	return c.gesture, c.dragging
}

// LastDelta returns the day delta applied by the most recent Update of
// the current gesture.
func (c *Controller) LastDelta() int { return c.lastDelta }

// Begin transitions Idle -> Dragging, capturing the stage's current
// effective interval and the starting pointer position.
func (c *Controller) Begin(g Gesture) error {
	if !c.canEdit {
		return ErrPermissionDenied
	}
	if c.dragging {
		return ErrAlreadyDragging
	}
	if g.Days <= 0 || g.TrackPx <= 0 {
		return fmt.Errorf("invalid track geometry: %d days over %.0fpx", g.Days, g.TrackPx)
	}
	switch g.Kind {
	case KindMove, KindResizeStart, KindResizeEnd:
	default:
		return fmt.Errorf("unknown drag kind %q", g.Kind)
	}
	c.gesture = g
	c.dragging = true
	c.lastDelta = 0
	c.log.Debugw("drag begin", map[string]any{
		"kind": string(g.Kind), "unit": g.UnitID, "stage": g.StageID,
	})
	return nil
}

// Update translates the pointer position into a whole-day delta and
// stages the resulting interval. Calls where the rounded delta matches
// the previous call write nothing. Degenerate intervals are corrected by
// clamping, never surfaced as an error: dragging always yields a valid
// interval with start before end.
func (c *Controller) Update(pointerX float64) error {
	if !c.dragging {
		return ErrNotDragging
	}
	g := c.gesture
	pixelsPerDay := g.TrackPx / float64(g.Days)
	delta := int(math.Round((pointerX - g.PointerX) / pixelsPerDay))
	if delta == c.lastDelta {
		return nil
	}
	c.lastDelta = delta

	start, end := g.Interval.Start, g.Interval.End
	switch g.Kind {
	case KindMove:
		start = timeline.AddDays(start, delta)
		end = timeline.AddDays(end, delta)
	case KindResizeStart:
		start = timeline.AddDays(start, delta)
		if !start.Before(end) {
			start = timeline.AddDays(end, -1)
		}
	case KindResizeEnd:
		end = timeline.AddDays(end, delta)
		if !end.After(start) {
			end = timeline.AddDays(start, 1)
		}
	}
	c.changes.Stage(g.UnitID, g.StageID, start, end)
	return nil
}

// End transitions Dragging -> Idle. The staged edit survives the
// gesture; only an explicit commit or discard resolves it. Pointer-leave
// handlers call End as a soft cancel for the same reason.
func (c *Controller) End() error {
	if !c.dragging {
		return ErrNotDragging
	}
	c.log.Debugw("drag end", map[string]any{
		"unit": c.gesture.UnitID, "stage": c.gesture.StageID, "delta_days": c.lastDelta,
	})
	c.dragging = false
	c.gesture = Gesture{}
	c.lastDelta = 0
	return nil
}
