package metrics

import (
	"time"

	"github.com/harborworks/slipway/core/staging"
)

// CommitRecord describes one commit batch for observability purposes.
type CommitRecord struct {
	Outcomes []staging.Outcome
	Time     time.Time
}

// RescheduleRecord describes one completed drag gesture.
type RescheduleRecord struct {
	UnitID    string
	StageID   string
	Kind      string
	DeltaDays int
	Time      time.Time
}

// AssignmentRecord describes one assignment replacement.
type AssignmentRecord struct {
	UnitID   string
	StageID  string
	Workers  int
	Warnings int
	Time     time.Time
}

// PlanningSink records board activity. Implementations must tolerate
// being called from the interaction path, so recording should be cheap
// or buffered.
type PlanningSink interface {
	RecordCommit(rec CommitRecord) error
	RecordReschedule(rec RescheduleRecord) error
	RecordAssignment(rec AssignmentRecord) error
}

// PendingGaugeSink is implemented by sinks that also track the size of
// the staging area.
type PendingGaugeSink interface {
	SetPendingEdits(n int)
}

// NopSink implements PlanningSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordCommit(CommitRecord) error           { return nil }
func (NopSink) RecordReschedule(RescheduleRecord) error   { return nil }
func (NopSink) RecordAssignment(AssignmentRecord) error   { return nil }
