package model

import "fmt"

// UnitCategory selects the stage vocabulary that applies to a unit.
type UnitCategory string

const (
	CategoryNewBuild    UnitCategory = "new_build"
	CategoryMaintenance UnitCategory = "maintenance"
	CategoryRefit       UnitCategory = "refit"
)

// Valid reports whether the category is one of the known values.
func (c UnitCategory) Valid() bool {
	switch c {
	case CategoryNewBuild, CategoryMaintenance, CategoryRefit:
		return true
	}
	return false
}

// UnitStatus is the lifecycle state of a unit as a whole.
type UnitStatus string

const (
	UnitPlanned      UnitStatus = "planned"
	UnitInProduction UnitStatus = "in_production"
	UnitOnHold       UnitStatus = "on_hold"
	UnitDelivered    UnitStatus = "delivered"
)

// Unit is a vessel under production, maintenance or refit. Stages are
// ordered by their position in the category vocabulary; the scheduling
// engine edits intervals and assignments on existing stages but never
// creates or removes them.
type Unit struct {
	ID       string       `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	Category UnitCategory `json:"category" yaml:"category"`
	Status   UnitStatus   `json:"status" yaml:"status"`
	Stages   []StageEntry `json:"stages" yaml:"stages"`
}

// Validate checks that the unit is internally consistent: a known
// category and every stage code drawn from that category's vocabulary.
func (u Unit) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("unit id is required")
	}
	if !u.Category.Valid() {
		return fmt.Errorf("unit %s: unknown category %q", u.ID, u.Category)
	}
	for _, st := range u.Stages {
		if err := st.Validate(u.Category); err != nil {
			return fmt.Errorf("unit %s: %w", u.ID, err)
		}
	}
	return nil
}

// Stage returns the stage with the given id, or false if absent.
func (u Unit) Stage(stageID string) (StageEntry, bool) {
	for _, st := range u.Stages {
		if st.ID == stageID {
			return st, true
		}
	}
	return StageEntry{}, false
}

// DeriveStatus infers the unit lifecycle state from its stage statuses.
// Every vocabulary stage completed means delivered; any started stage
// means in production; otherwise the unit is still planned.
func (u Unit) DeriveStatus() UnitStatus {
	if len(u.Stages) == 0 {
		return UnitPlanned
	}
	completed := 0
	started := false
	for _, st := range u.Stages {
		switch st.Status {
		case StageCompleted:
			completed++
			started = true
		case StageInProgress, StageDelayed:
			started = true
		}
	}
	if completed == len(u.Stages) && completed == len(Vocabulary(u.Category)) {
		return UnitDelivered
	}
	if started {
		return UnitInProduction
	}
	return UnitPlanned
}
