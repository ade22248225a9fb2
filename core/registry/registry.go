package registry

import (
	"errors"

	"github.com/harborworks/slipway/core/model"
)

var (
	// ErrUnitNotFound is returned when a unit id has no record, for
	// example because it was deleted out-of-band after an edit was
	// staged against it.
	ErrUnitNotFound = errors.New("unit not found")
	// ErrStageNotFound is returned when a unit exists but the stage id
	// does not.
	ErrStageNotFound = errors.New("stage not found")
	// ErrWorkerNotFound is returned when a worker id has no record.
	ErrWorkerNotFound = errors.New("worker not found")
)

// Registry is the unit and worker store the scheduling engine works
// against. It replaces the ambient shared state of older planning tools
// with an explicit service object: the engine depends only on these
// method contracts, and cross-references stay id-based so no caller ever
// holds a live pointer into the store.
type Registry interface {
	// ListUnits returns every unit with its embedded stage list,
	// ordered by unit id.
	ListUnits() ([]model.Unit, error)
	// GetUnit returns one unit by id.
	GetUnit(unitID string) (model.Unit, error)
	// UpdateUnitTimeline replaces the unit's stage list.
	UpdateUnitTimeline(unitID string, stages []model.StageEntry) error
	// SetAssignedWorkers atomically replaces the full assignment set of
	// one stage.
	SetAssignedWorkers(unitID, stageID string, workerIDs []string) error
	// ListWorkers returns the roster ordered by worker id.
	ListWorkers() ([]model.Worker, error)
	// GetWorkerByID returns one worker by id.
	GetWorkerByID(workerID string) (model.Worker, error)
}
