// Package board ties the scheduling engine together for one planner
// session: the visible window, the in-flight drag gesture, the staging
// area and the registry handle. UI chrome talks to a Session and nothing
// else.
package board

import (
	"errors"
	"fmt"
	"time"

	"github.com/harborworks/slipway/core/assignment"
	"github.com/harborworks/slipway/core/drag"
	"github.com/harborworks/slipway/core/events"
	"github.com/harborworks/slipway/core/logger"
	"github.com/harborworks/slipway/core/metrics"
	"github.com/harborworks/slipway/core/model"
	"github.com/harborworks/slipway/core/progress"
	"github.com/harborworks/slipway/core/registry"
	"github.com/harborworks/slipway/core/staging"
	"github.com/harborworks/slipway/core/timeline"
	"github.com/harborworks/slipway/internal/eventbus"
)

// Options configures a Session. Zero values fall back to a quarter view
// anchored on now, read-only, with no-op sink and logger.
type Options struct {
	Anchor      time.Time
	Granularity timeline.Granularity
	CanEdit     bool
	// Durations overrides the default per-code stage duration table.
	Durations map[model.StageCode]int
	Sink      metrics.PlanningSink
	Bus       *eventbus.Bus[events.Event]
	Logger    logger.Logger
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// StageBar is one rendered stage with its placement in the window.
type StageBar struct {
	StageID   string
	Code      model.StageCode
	Status    model.StageStatus
	Placement timeline.Placement
}

// UnitRow is the render model of one unit's lane.
type UnitRow struct {
	Unit model.Unit
	Bars []StageBar
}

// Session is a single planner's view onto the board. It is not
// synchronized across sessions: staged edits and drag state are private
// to one planner, and two sessions staging conflicting edits resolve by
// last commit wins.
type Session struct {
	reg        registry.Registry
	changes    *staging.ChangeSet
	controller *drag.Controller
	validator  *assignment.Validator
	bus        *eventbus.Bus[events.Event]
	sink       metrics.PlanningSink
	log        logger.Logger
	now        func() time.Time

	anchor      time.Time
	granularity timeline.Granularity
	window      timeline.ViewWindow
	durations   map[model.StageCode]int
	trackPx     float64
}

// NewSession creates a Session over the registry.
func NewSession(reg registry.Registry, opts Options) (*Session, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Anchor.IsZero() {
		opts.Anchor = opts.Now()
	}
	if opts.Granularity == "" {
		opts.Granularity = timeline.GranularityQuarter
	}
	if opts.Sink == nil {
		opts.Sink = metrics.NopSink{}
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop{}
	}
	w, err := timeline.ComputeWindow(opts.Anchor, opts.Granularity)
	if err != nil {
		return nil, err
	}
	changes := staging.New()
	return &Session{
		reg:         reg,
		changes:     changes,
		controller:  drag.NewController(changes, opts.CanEdit, opts.Logger),
		validator:   assignment.NewValidator(reg),
		bus:         opts.Bus,
		sink:        opts.Sink,
		log:         opts.Logger,
		now:         opts.Now,
		anchor:      opts.Anchor,
		granularity: opts.Granularity,
		window:      w,
		durations:   opts.Durations,
	}, nil
}

// Window returns the current view window.
func (s *Session) Window() timeline.ViewWindow { return s.window }

// Granularity returns the current view granularity.
func (s *Session) Granularity() timeline.Granularity { return s.granularity }

// Columns returns the day grid for the current window.
func (s *Session) Columns() []timeline.Column {
	return timeline.Columns(s.window, s.now())
}

// SetTrackWidth tells the session how wide the timeline track is
// rendered, in pixels. Drag gestures translate pointer movement through
// this width.
func (s *Session) SetTrackWidth(px float64) { s.trackPx = px }

// SetGranularity switches the view mode and recomputes the window.
func (s *Session) SetGranularity(g timeline.Granularity) error {
	w, err := timeline.ComputeWindow(s.anchor, g)
	if err != nil {
		return err
	}
	s.granularity = g
	s.window = w
	return nil
}

// Next moves the view one granularity unit forward.
func (s *Session) Next() error { return s.navigate(1) }

// Prev moves the view one granularity unit back.
func (s *Session) Prev() error { return s.navigate(-1) }

// Today re-anchors the view on the current date.
func (s *Session) Today() error {
	s.anchor = s.now()
	w, err := timeline.ComputeWindow(s.anchor, s.granularity)
	if err != nil {
		return err
	}
	s.window = w
	return nil
}

func (s *Session) navigate(steps int) error {
	anchor, err := timeline.ShiftAnchor(s.anchor, s.granularity, steps)
	if err != nil {
		return err
	}
	w, err := timeline.ComputeWindow(anchor, s.granularity)
	if err != nil {
		return err
	}
	s.anchor = anchor
	s.window = w
	return nil
}

// Rows builds the render model for every unit, honoring staged edits:
// a stage with an uncommitted edit is placed at its tentative interval
// and flagged provisional. Stages outside the window are omitted from
// the lane.
func (s *Session) Rows() ([]UnitRow, error) {
	units, err := s.reg.ListUnits()
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	mapper := timeline.NewMapper(s.window, s.durations, s.log)
	rows := make([]UnitRow, 0, len(units))
	for _, u := range units {
		row := UnitRow{Unit: u}
		for _, st := range u.Stages {
			var override *timeline.Interval
			if e, ok := s.changes.Get(u.ID, st.ID); ok {
				override = &timeline.Interval{Start: e.Start, End: e.End}
			}
			p, ok := mapper.Place(st, override)
			if !ok {
				continue
			}
			row.Bars = append(row.Bars, StageBar{
				StageID:   st.ID,
				Code:      st.Code,
				Status:    st.Status,
				Placement: p,
			})
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// BeginDrag starts a gesture on a stage bar. The captured interval is
// the stage's current effective one, including any staged edit, so a
// second drag continues from where the first left the bar.
func (s *Session) BeginDrag(kind drag.Kind, unitID, stageID string, pointerX float64) error {
	u, err := s.reg.GetUnit(unitID)
	if err != nil {
		return err
	}
	st, ok := u.Stage(stageID)
	if !ok {
		return fmt.Errorf("%w: %s/%s", registry.ErrStageNotFound, unitID, stageID)
	}
	var iv timeline.Interval
	if e, staged := s.changes.Get(unitID, stageID); staged {
		iv = timeline.Interval{Start: e.Start, End: e.End}
	} else {
		mapper := timeline.NewMapper(s.window, s.durations, s.log)
		if iv, ok = mapper.EffectiveInterval(st); !ok {
			return fmt.Errorf("stage %s/%s has no draggable interval", unitID, stageID)
		}
	}
	return s.controller.Begin(drag.Gesture{
		Kind:     kind,
		UnitID:   unitID,
		StageID:  stageID,
		Interval: iv,
		PointerX: pointerX,
		TrackPx:  s.trackPx,
		Days:     s.window.TotalDays,
	})
}

// DragTo applies a pointer move to the in-flight gesture.
func (s *Session) DragTo(pointerX float64) error {
	if err := s.controller.Update(pointerX); err != nil {
		return err
	}
	if g, ok := s.sink.(metrics.PendingGaugeSink); ok {
		g.SetPendingEdits(s.changes.Len())
	}
	return nil
}

// EndDrag finishes the gesture, keeping the staged edit for a later
// commit or discard.
func (s *Session) EndDrag() error {
	g, dragging := s.controller.Gesture()
	if !dragging {
		return drag.ErrNotDragging
	}
	delta := s.controller.LastDelta()
	if err := s.controller.End(); err != nil {
		return err
	}
	if err := s.sink.RecordReschedule(metrics.RescheduleRecord{
		UnitID:    g.UnitID,
		StageID:   g.StageID,
		Kind:      string(g.Kind),
		DeltaDays: delta,
		Time:      s.now(),
	}); err != nil {
		s.log.Warnf("record reschedule: %v", err)
	}
	return nil
}

// PointerLeave is the deterministic handler for a drag leaving the
// scheduling surface without a release: a soft cancel that ends the
// gesture but keeps the staged edit.
func (s *Session) PointerLeave() {
	if s.controller.Dragging() {
		if err := s.controller.End(); err != nil && !errors.Is(err, drag.ErrNotDragging) {
			s.log.Warnf("pointer leave: %v", err)
		}
	}
}

// CancelDrag is the true cancel (Escape): it ends the gesture and drops
// the staged edit for the dragged stage.
func (s *Session) CancelDrag() {
	g, dragging := s.controller.Gesture()
	if !dragging {
		return
	}
	if err := s.controller.End(); err != nil {
		s.log.Warnf("cancel drag: %v", err)
		return
	}
	s.changes.Discard(g.UnitID, g.StageID)
	if gg, ok := s.sink.(metrics.PendingGaugeSink); ok {
		gg.SetPendingEdits(s.changes.Len())
	}
}

// Dragging reports whether a gesture is in flight, during which rendered
// intervals for the dragged stage are provisional.
func (s *Session) Dragging() bool { return s.controller.Dragging() }

// PendingCount drives the "N unsaved changes" indicator.
func (s *Session) PendingCount() int { return s.changes.Len() }

// Discard drops the staged edit for one stage, if any.
func (s *Session) Discard(unitID, stageID string) {
	s.changes.Discard(unitID, stageID)
	if g, ok := s.sink.(metrics.PendingGaugeSink); ok {
		g.SetPendingEdits(s.changes.Len())
	}
}

// DiscardAll drops every staged edit without touching persisted state.
func (s *Session) DiscardAll() {
	s.changes.DiscardAll()
	if g, ok := s.sink.(metrics.PendingGaugeSink); ok {
		g.SetPendingEdits(0)
	}
}

// Commit writes every staged edit to the registry. Dragging only ever
// reschedules plans, so the write touches planned dates and leaves
// actual dates alone. A unit or stage deleted out-of-band since staging
// skips that entry and the rest still apply; the outcome list tells the
// planner which entries to re-surface.
func (s *Session) Commit() ([]staging.Outcome, error) {
	outcomes, err := s.changes.CommitAll(s.writeEdit)
	if err != nil {
		return outcomes, err
	}
	now := s.now()
	if err := s.sink.RecordCommit(metrics.CommitRecord{Outcomes: outcomes, Time: now}); err != nil {
		s.log.Warnf("record commit: %v", err)
	}
	if g, ok := s.sink.(metrics.PendingGaugeSink); ok {
		g.SetPendingEdits(s.changes.Len())
	}
	if s.bus != nil {
		s.bus.Publish(events.CommitAppliedEvent{Outcomes: outcomes, Time: now})
		for _, o := range outcomes {
			if o.Status != staging.StatusCommitted {
				continue
			}
			s.bus.Publish(events.StageRescheduledEvent{
				UnitID:  o.UnitID,
				StageID: o.StageID,
				Start:   o.Start,
				End:     o.End,
				Time:    now,
			})
		}
	}
	return outcomes, nil
}

// writeEdit persists one staged edit through the registry's timeline
// update, mapping missing records to skip reasons.
func (s *Session) writeEdit(unitID, stageID string, start, end time.Time) (staging.SkipReason, error) {
	u, err := s.reg.GetUnit(unitID)
	if errors.Is(err, registry.ErrUnitNotFound) {
		return staging.SkipUnitNotFound, nil
	}
	if err != nil {
		return "", err
	}
	found := false
	for i := range u.Stages {
		if u.Stages[i].ID == stageID {
			u.Stages[i].PlannedStart = timeline.FormatISO(start)
			u.Stages[i].PlannedEnd = timeline.FormatISO(end)
			found = true
			break
		}
	}
	if !found {
		return staging.SkipStageNotFound, nil
	}
	if err := s.reg.UpdateUnitTimeline(unitID, u.Stages); err != nil {
		if errors.Is(err, registry.ErrUnitNotFound) {
			return staging.SkipUnitNotFound, nil
		}
		return "", err
	}
	return "", nil
}

// AssignWorkers replaces a stage's assignment set, returning soft
// warnings for workers lacking the skill or marked unavailable.
func (s *Session) AssignWorkers(unitID, stageID string, workerIDs []string) ([]assignment.Warning, error) {
	warnings, err := s.validator.Assign(unitID, stageID, workerIDs)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if err := s.sink.RecordAssignment(metrics.AssignmentRecord{
		UnitID:   unitID,
		StageID:  stageID,
		Workers:  len(workerIDs),
		Warnings: len(warnings),
		Time:     now,
	}); err != nil {
		s.log.Warnf("record assignment: %v", err)
	}
	if s.bus != nil {
		s.bus.Publish(events.WorkersAssignedEvent{
			UnitID:    unitID,
			StageID:   stageID,
			WorkerIDs: workerIDs,
			Warnings:  len(warnings),
			Time:      now,
		})
	}
	return warnings, nil
}

// MatchSkills partitions the roster for the assignment dialog.
func (s *Session) MatchSkills(code model.StageCode) (assignment.SkillMatch, error) {
	return s.validator.MatchSkills(code)
}

// Workload returns the active stage count for one worker.
func (s *Session) Workload(workerID string) (int, error) {
	return s.validator.Workload(workerID)
}

// WorkloadStats summarizes roster load for the balancing hint.
func (s *Session) WorkloadStats() (assignment.WorkloadStats, error) {
	return s.validator.Stats()
}

// Progress returns the unit's completion percentage.
func (s *Session) Progress(unitID string) (int, error) {
	u, err := s.reg.GetUnit(unitID)
	if err != nil {
		return 0, err
	}
	return progress.PercentComplete(u), nil
}
