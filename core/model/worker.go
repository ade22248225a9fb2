package model

// WorkerAvailability is the roster state of a worker.
type WorkerAvailability string

const (
	WorkerAvailable   WorkerAvailability = "available"
	WorkerBusy        WorkerAvailability = "busy"
	WorkerUnavailable WorkerAvailability = "unavailable"
)

// Worker is a member of the yard roster. Skills list the stage codes the
// worker is qualified for. The scheduling engine never mutates workers;
// it only reads the roster and references workers by id.
type Worker struct {
	ID           string             `json:"id" yaml:"id"`
	Name         string             `json:"name" yaml:"name"`
	Skills       []StageCode        `json:"skills" yaml:"skills"`
	Availability WorkerAvailability `json:"availability" yaml:"availability"`
}

// HasSkill reports whether the worker is qualified for the stage code.
func (w Worker) HasSkill(code StageCode) bool {
	for _, s := range w.Skills {
		if s == code {
			return true
		}
	}
	return false
}
