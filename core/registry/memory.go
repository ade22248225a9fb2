package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/harborworks/slipway/core/model"
)

// MemoryRegistry is an in-memory Registry. It copies units on the way in
// and out so callers can never mutate the store through a returned
// slice.
type MemoryRegistry struct {
	mu      sync.RWMutex
	units   map[string]model.Unit
	workers map[string]model.Worker
}

// NewMemoryRegistry creates an empty registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		units:   make(map[string]model.Unit),
		workers: make(map[string]model.Worker),
	}
}

// PutUnit validates and stores a unit, replacing any prior record.
func (r *MemoryRegistry) PutUnit(u model.Unit) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("put unit: %w", err)
	}
	r.mu.Lock()
	r.units[u.ID] = copyUnit(u)
	r.mu.Unlock()
	return nil
}

// DeleteUnit removes a unit. Deleting an unknown id is a no-op.
func (r *MemoryRegistry) DeleteUnit(unitID string) {
	r.mu.Lock()
	delete(r.units, unitID)
	r.mu.Unlock()
}

// PutWorker stores a roster entry, replacing any prior record.
func (r *MemoryRegistry) PutWorker(w model.Worker) error {
	if w.ID == "" {
		return fmt.Errorf("put worker: id is required")
	}
	r.mu.Lock()
	r.workers[w.ID] = w
	r.mu.Unlock()
	return nil
}

func (r *MemoryRegistry) ListUnits() ([]model.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	units := make([]model.Unit, 0, len(r.units))
	for _, u := range r.units {
		units = append(units, copyUnit(u))
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	return units, nil
}

func (r *MemoryRegistry) GetUnit(unitID string) (model.Unit, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.units[unitID]
	if !ok {
		return model.Unit{}, fmt.Errorf("%w: %s", ErrUnitNotFound, unitID)
	}
	return copyUnit(u), nil
}

func (r *MemoryRegistry) UpdateUnitTimeline(unitID string, stages []model.StageEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[unitID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnitNotFound, unitID)
	}
	u.Stages = copyStages(stages)
	r.units[unitID] = u
	return nil
}

func (r *MemoryRegistry) SetAssignedWorkers(unitID, stageID string, workerIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.units[unitID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnitNotFound, unitID)
	}
	for i := range u.Stages {
		if u.Stages[i].ID == stageID {
			u.Stages[i].AssignedWorkers = append([]string(nil), workerIDs...)
			r.units[unitID] = u
			return nil
		}
	}
	return fmt.Errorf("%w: %s/%s", ErrStageNotFound, unitID, stageID)
}

func (r *MemoryRegistry) ListWorkers() ([]model.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	workers := make([]model.Worker, 0, len(r.workers))
	for _, w := range r.workers {
		workers = append(workers, w)
	}
	sort.Slice(workers, func(i, j int) bool { return workers[i].ID < workers[j].ID })
	return workers, nil
}

func (r *MemoryRegistry) GetWorkerByID(workerID string) (model.Worker, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.workers[workerID]
	if !ok {
		return model.Worker{}, fmt.Errorf("%w: %s", ErrWorkerNotFound, workerID)
	}
	return w, nil
}

func copyUnit(u model.Unit) model.Unit {
	u.Stages = copyStages(u.Stages)
	return u
}

func copyStages(stages []model.StageEntry) []model.StageEntry {
	out := make([]model.StageEntry, len(stages))
	copy(out, stages)
	for i := range out {
		out[i].AssignedWorkers = append([]string(nil), stages[i].AssignedWorkers...)
	}
	return out
}
