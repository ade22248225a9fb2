package staging

import (
	"sort"
	"time"
)

// Key identifies one staged edit: at most one edit exists per
// (unit, stage) pair, later drags on the same stage overwrite it.
type Key struct {
	UnitID  string
	StageID string
}

// Edit is one tentative interval change produced by dragging. Only the
// planned interval is staged; actual dates are never touched by drags.
type Edit struct {
	UnitID  string
	StageID string
	Start   time.Time
	End     time.Time
}

// CommitStatus classifies the per-entry result of a commit.
type CommitStatus string

const (
	StatusCommitted CommitStatus = "committed"
	StatusSkipped   CommitStatus = "skipped"
)

// SkipReason explains why a staged entry was not written.
type SkipReason string

const (
	SkipUnitNotFound  SkipReason = "unit-not-found"
	SkipStageNotFound SkipReason = "stage-not-found"
)

// Outcome reports what happened to one staged entry during a commit.
// Committed entries carry the applied interval so callers can re-render
// without refetching.
type Outcome struct {
	UnitID  string
	StageID string
	Status  CommitStatus
	Reason  SkipReason
	Start   time.Time
	End     time.Time
}

// WriteFunc persists one staged edit. Implementations signal a missing
// unit or stage through the returned reason; any other error aborts the
// commit and leaves the remaining entries staged.
type WriteFunc func(unitID, stageID string, start, end time.Time) (SkipReason, error)

// ChangeSet is the staging area for uncommitted drag edits. It belongs
// to one planner session and is not synchronized across sessions.
type ChangeSet struct {
	edits map[Key]Edit
}

// New creates an empty ChangeSet.
func New() *ChangeSet {
	return &ChangeSet{edits: make(map[Key]Edit)}
}

// Stage upserts the edit for (unitID, stageID). Last write wins.
func (c *ChangeSet) Stage(unitID, stageID string, start, end time.Time) {
	c.edits[Key{UnitID: unitID, StageID: stageID}] = Edit{
		UnitID:  unitID,
		StageID: stageID,
		Start:   start,
		End:     end,
	}
}

// Get returns the staged edit for the key, if any.
func (c *ChangeSet) Get(unitID, stageID string) (Edit, bool) {
	e, ok := c.edits[Key{UnitID: unitID, StageID: stageID}]
	return e, ok
}

// Len is the number of distinct staged (unit, stage) keys. It drives the
// "N unsaved changes" badge, so repeated drags on one stage count once.
func (c *ChangeSet) Len() int { return len(c.edits) }

// Discard drops the staged edit for one stage, if present.
func (c *ChangeSet) Discard(unitID, stageID string) {
	delete(c.edits, Key{UnitID: unitID, StageID: stageID})
}

// DiscardAll clears the staging area. Persisted state is untouched, and
// edits already committed cannot be undone by discarding.
func (c *ChangeSet) DiscardAll() {
	c.edits = make(map[Key]Edit)
}

// CommitAll writes every staged edit through write and clears the set.
// A missing unit or stage skips that entry and the rest still apply; the
// caller inspects the outcomes to re-surface skipped entries. Entries
// are written in a deterministic key order.
func (c *ChangeSet) CommitAll(write WriteFunc) ([]Outcome, error) {
	keys := make([]Key, 0, len(c.edits))
	for k := range c.edits {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].UnitID != keys[j].UnitID {
			return keys[i].UnitID < keys[j].UnitID
		}
		return keys[i].StageID < keys[j].StageID
	})

	outcomes := make([]Outcome, 0, len(keys))
	for _, k := range keys {
		e := c.edits[k]
		reason, err := write(e.UnitID, e.StageID, e.Start, e.End)
		if err != nil {
			return outcomes, err
		}
		out := Outcome{UnitID: e.UnitID, StageID: e.StageID, Start: e.Start, End: e.End}
		if reason == "" {
			out.Status = StatusCommitted
		} else {
			out.Status = StatusSkipped
			out.Reason = reason
		}
		outcomes = append(outcomes, out)
	}
	c.edits = make(map[Key]Edit)
	return outcomes, nil
}
