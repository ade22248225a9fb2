// Package events defines the notifications the planning engine publishes
// on the session event bus. Infrastructure adapters (metrics sinks, the
// shop-floor notifier) subscribe to these instead of reaching into
// engine state.
package events

import (
	"time"

	"github.com/harborworks/slipway/core/staging"
)

// Event is the union of board notifications.
type Event interface{ isEvent() }

// CommitAppliedEvent is published after a commit batch ran, with the
// per-entry outcomes.
type CommitAppliedEvent struct {
	Outcomes []staging.Outcome
	Time     time.Time
}

// StageRescheduledEvent is published per committed entry so consumers
// that care about individual stages need not unpack batches.
type StageRescheduledEvent struct {
	UnitID  string
	StageID string
	Start   time.Time
	End     time.Time
	Time    time.Time
}

// WorkersAssignedEvent is published when a stage's assignment set is
// replaced.
type WorkersAssignedEvent struct {
	UnitID    string
	StageID   string
	WorkerIDs []string
	Warnings  int
	Time      time.Time
}

func (CommitAppliedEvent) isEvent()     {}
func (StageRescheduledEvent) isEvent()  {}
func (WorkersAssignedEvent) isEvent()   {}
