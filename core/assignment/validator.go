package assignment

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/harborworks/slipway/core/model"
	"github.com/harborworks/slipway/core/registry"
)

// SkillMatch partitions the roster for one stage code. Workers lacking
// the skill may still be assigned; the split only feeds a warning
// annotation in the assignment dialog.
type SkillMatch struct {
	Qualified   []model.Worker
	Unqualified []model.Worker
}

// WorkloadStats summarizes how evenly stages are spread over the roster.
type WorkloadStats struct {
	Mean   float64
	StdDev float64
	Max    int
}

// Validator computes skill fit and workload against the registry.
type Validator struct {
	reg registry.Registry
}

// NewValidator creates a Validator reading from reg.
func NewValidator(reg registry.Registry) *Validator {
	return &Validator{reg: reg}
}

// MatchSkills splits the roster into workers qualified for the stage
// code and workers who are not.
func (v *Validator) MatchSkills(code model.StageCode) (SkillMatch, error) {
	workers, err := v.reg.ListWorkers()
	if err != nil {
		return SkillMatch{}, fmt.Errorf("list workers: %w", err)
	}
	var m SkillMatch
	for _, w := range workers {
		if w.HasSkill(code) {
			m.Qualified = append(m.Qualified, w)
		} else {
			m.Unqualified = append(m.Unqualified, w)
		}
	}
	return m, nil
}

// Workload counts the stages across all units where the worker is
// assigned and the stage is not completed.
func (v *Validator) Workload(workerID string) (int, error) {
	units, err := v.reg.ListUnits()
	if err != nil {
		return 0, fmt.Errorf("list units: %w", err)
	}
	count := 0
	for _, u := range units {
		for _, st := range u.Stages {
			if st.Status == model.StageCompleted {
				continue
			}
			for _, id := range st.AssignedWorkers {
				if id == workerID {
					count++
					break
				}
			}
		}
	}
	return count, nil
}

// RosterWorkload returns the workload of every rostered worker, keyed by
// worker id. Workers with no assignments appear with a zero count so the
// balancing hint sees the whole roster.
func (v *Validator) RosterWorkload() (map[string]int, error) {
	workers, err := v.reg.ListWorkers()
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	units, err := v.reg.ListUnits()
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	loads := make(map[string]int, len(workers))
	for _, w := range workers {
		loads[w.ID] = 0
	}
	for _, u := range units {
		for _, st := range u.Stages {
			if st.Status == model.StageCompleted {
				continue
			}
			for _, id := range st.AssignedWorkers {
				if _, ok := loads[id]; ok {
					loads[id]++
				}
			}
		}
	}
	return loads, nil
}

// Stats computes mean, standard deviation and maximum over the roster
// workloads for the assignment dialog's balancing hint.
func (v *Validator) Stats() (WorkloadStats, error) {
	loads, err := v.RosterWorkload()
	if err != nil {
		return WorkloadStats{}, err
	}
	if len(loads) == 0 {
		return WorkloadStats{}, nil
	}
	xs := make([]float64, 0, len(loads))
	max := 0
	for _, n := range loads {
		xs = append(xs, float64(n))
		if n > max {
			max = n
		}
	}
	mean, std := stat.MeanStdDev(xs, nil)
	if len(xs) < 2 {
		std = 0
	}
	return WorkloadStats{Mean: mean, StdDev: std, Max: max}, nil
}

// Warning is a soft annotation attached to a proposed assignment.
type Warning struct {
	WorkerID string
	Message  string
}

// Assign atomically replaces the stage's assignment set and returns a
// warning per assigned worker lacking the stage's skill or currently
// unavailable. Warnings never block the assignment.
func (v *Validator) Assign(unitID, stageID string, workerIDs []string) ([]Warning, error) {
	u, err := v.reg.GetUnit(unitID)
	if err != nil {
		return nil, err
	}
	st, ok := u.Stage(stageID)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", registry.ErrStageNotFound, unitID, stageID)
	}
	var warnings []Warning
	for _, id := range workerIDs {
		w, err := v.reg.GetWorkerByID(id)
		if err != nil {
			return nil, err
		}
		if !w.HasSkill(st.Code) {
			warnings = append(warnings, Warning{
				WorkerID: id,
				Message:  fmt.Sprintf("%s is not qualified for %s", w.Name, st.Code),
			})
		}
		if w.Availability == model.WorkerUnavailable {
			warnings = append(warnings, Warning{
				WorkerID: id,
				Message:  fmt.Sprintf("%s is marked unavailable", w.Name),
			})
		}
	}
	if err := v.reg.SetAssignedWorkers(unitID, stageID, workerIDs); err != nil {
		return nil, err
	}
	return warnings, nil
}
