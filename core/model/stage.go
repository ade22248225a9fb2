package model

import "fmt"

// StageCode identifies one phase of a unit's workflow. Codes are scoped
// to a category vocabulary: new builds and service work (maintenance or
// refit) use disjoint sets, and a code is only meaningful paired with a
// category it belongs to.
type StageCode string

// New-build vocabulary, in workflow order.
const (
	StageKeelLaying       StageCode = "keel_laying"
	StageHullConstruction StageCode = "hull_construction"
	StageSuperstructure   StageCode = "superstructure"
	StagePipingElectrical StageCode = "piping_electrical"
	StagePainting         StageCode = "painting"
	StageOutfitting       StageCode = "outfitting"
	StageSeaTrials        StageCode = "sea_trials"
	StageDelivery         StageCode = "delivery"
)

// Service vocabulary (maintenance and refit), in workflow order.
const (
	StageHaulOut      StageCode = "haul_out"
	StageInspection   StageCode = "inspection"
	StageHullCleaning StageCode = "hull_cleaning"
	StageRepairs      StageCode = "repairs"
	StageRepainting   StageCode = "repainting"
	StageSystemsCheck StageCode = "systems_check"
	StageLaunch       StageCode = "launch"
)

var newBuildVocabulary = []StageCode{
	StageKeelLaying,
	StageHullConstruction,
	StageSuperstructure,
	StagePipingElectrical,
	StagePainting,
	StageOutfitting,
	StageSeaTrials,
	StageDelivery,
}

var serviceVocabulary = []StageCode{
	StageHaulOut,
	StageInspection,
	StageHullCleaning,
	StageRepairs,
	StageRepainting,
	StageSystemsCheck,
	StageLaunch,
}

// Vocabulary returns the ordered stage codes for a category. Maintenance
// and refit share the service vocabulary. Unknown categories yield nil.
func Vocabulary(cat UnitCategory) []StageCode {
	switch cat {
	case CategoryNewBuild:
		return newBuildVocabulary
	case CategoryMaintenance, CategoryRefit:
		return serviceVocabulary
	}
	return nil
}

// ErrUnknownStageCode is returned when a stage code does not belong to
// the vocabulary of the category it is paired with.
type ErrUnknownStageCode struct {
	Category UnitCategory
	Code     StageCode
}

func (e ErrUnknownStageCode) Error() string {
	return fmt.Sprintf("stage code %q is not in the %s vocabulary", e.Code, e.Category)
}

// StageCodeFor validates that code belongs to the category's vocabulary.
// Pairing a code with the wrong category is a constructor-time error,
// never a silent no-op.
func StageCodeFor(cat UnitCategory, code StageCode) (StageCode, error) {
	for _, c := range Vocabulary(cat) {
		if c == code {
			return code, nil
		}
	}
	return "", ErrUnknownStageCode{Category: cat, Code: code}
}

// defaultDurationDays is the fallback length used when a stage has a
// start but no end date yet.
var defaultDurationDays = map[StageCode]int{
	StageKeelLaying:       14,
	StageHullConstruction: 60,
	StageSuperstructure:   30,
	StagePipingElectrical: 21,
	StagePainting:         10,
	StageOutfitting:       30,
	StageSeaTrials:        7,
	StageDelivery:         2,

	StageHaulOut:      1,
	StageInspection:   3,
	StageHullCleaning: 2,
	StageRepairs:      14,
	StageRepainting:   5,
	StageSystemsCheck: 2,
	StageLaunch:       1,
}

// DefaultDurationDays returns the fallback duration for a code. Codes
// without a table entry default to 7 days.
func DefaultDurationDays(code StageCode) int {
	if d, ok := defaultDurationDays[code]; ok {
		return d
	}
	return 7
}

// StageStatus is the execution state of a single stage.
type StageStatus string

const (
	StagePending    StageStatus = "pending"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
	StageDelayed    StageStatus = "delayed"
)

// StageEntry is one phase on a unit's timeline. Date fields are ISO-8601
// calendar dates (YYYY-MM-DD); empty means not yet scheduled or not yet
// reached. When both ends of an interval are present, start must not be
// after end.
type StageEntry struct {
	ID              string      `json:"id" yaml:"id"`
	Code            StageCode   `json:"code" yaml:"code"`
	PlannedStart    string      `json:"planned_start,omitempty" yaml:"planned_start"`
	PlannedEnd      string      `json:"planned_end,omitempty" yaml:"planned_end"`
	ActualStart     string      `json:"actual_start,omitempty" yaml:"actual_start"`
	ActualEnd       string      `json:"actual_end,omitempty" yaml:"actual_end"`
	Status          StageStatus `json:"status" yaml:"status"`
	AssignedWorkers []string    `json:"assigned_workers,omitempty" yaml:"assigned_workers"`
}

// Validate checks the stage against its unit's category vocabulary.
func (s StageEntry) Validate(cat UnitCategory) error {
	if s.ID == "" {
		return fmt.Errorf("stage id is required")
	}
	if _, err := StageCodeFor(cat, s.Code); err != nil {
		return fmt.Errorf("stage %s: %w", s.ID, err)
	}
	return nil
}
