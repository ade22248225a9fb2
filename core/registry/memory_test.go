package registry

import (
	"errors"
	"testing"

	"github.com/harborworks/slipway/core/model"
)

func testUnit() model.Unit {
	return model.Unit{
		ID:       "hull-042",
		Name:     "MV Aurora",
		Category: model.CategoryMaintenance,
		Status:   model.UnitInProduction,
		Stages: []model.StageEntry{
			{ID: "st-1", Code: model.StageHaulOut, Status: model.StageCompleted, ActualStart: "2024-01-02", ActualEnd: "2024-01-02"},
			{ID: "st-2", Code: model.StageRepairs, Status: model.StageInProgress, PlannedStart: "2024-01-03", PlannedEnd: "2024-01-17"},
		},
	}
}

func TestPutAndGetUnit(t *testing.T) {
	r := NewMemoryRegistry()
	if err := r.PutUnit(testUnit()); err != nil {
		t.Fatalf("put: %v", err)
	}
	u, err := r.GetUnit("hull-042")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if u.Name != "MV Aurora" || len(u.Stages) != 2 {
		t.Fatalf("unexpected unit %+v", u)
	}
}

func TestPutUnitRejectsWrongVocabulary(t *testing.T) {
	r := NewMemoryRegistry()
	u := testUnit()
	u.Stages[0].Code = model.StageKeelLaying // new-build code on a maintenance unit
	var vocabErr model.ErrUnknownStageCode
	if err := r.PutUnit(u); !errors.As(err, &vocabErr) {
		t.Fatalf("expected vocabulary error, got %v", err)
	}
}

func TestGetUnitNotFound(t *testing.T) {
	r := NewMemoryRegistry()
	if _, err := r.GetUnit("nope"); !errors.Is(err, ErrUnitNotFound) {
		t.Fatalf("expected ErrUnitNotFound, got %v", err)
	}
}

func TestListUnitsOrderedAndCopied(t *testing.T) {
	r := NewMemoryRegistry()
	u := testUnit()
	for _, id := range []string{"hull-100", "hull-003", "hull-042"} {
		u.ID = id
		if err := r.PutUnit(u); err != nil {
			t.Fatalf("put %s: %v", id, err)
		}
	}
	units, err := r.ListUnits()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(units) != 3 || units[0].ID != "hull-003" || units[2].ID != "hull-100" {
		t.Fatalf("expected ordered listing, got %v", units)
	}
	// Mutating the returned slice must not reach the store.
	units[0].Stages[0].Status = model.StageDelayed
	fresh, _ := r.GetUnit("hull-003")
	if fresh.Stages[0].Status == model.StageDelayed {
		t.Fatalf("listing leaked a live reference into the store")
	}
}

func TestUpdateUnitTimeline(t *testing.T) {
	r := NewMemoryRegistry()
	if err := r.PutUnit(testUnit()); err != nil {
		t.Fatalf("put: %v", err)
	}
	u, _ := r.GetUnit("hull-042")
	u.Stages[1].PlannedStart = "2024-02-01"
	u.Stages[1].PlannedEnd = "2024-02-15"
	if err := r.UpdateUnitTimeline("hull-042", u.Stages); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := r.GetUnit("hull-042")
	if got.Stages[1].PlannedStart != "2024-02-01" {
		t.Fatalf("timeline not replaced: %+v", got.Stages[1])
	}
	if err := r.UpdateUnitTimeline("gone", u.Stages); !errors.Is(err, ErrUnitNotFound) {
		t.Fatalf("expected ErrUnitNotFound, got %v", err)
	}
}

func TestSetAssignedWorkersReplacesSet(t *testing.T) {
	r := NewMemoryRegistry()
	if err := r.PutUnit(testUnit()); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := r.SetAssignedWorkers("hull-042", "st-2", []string{"w1", "w2"}); err != nil {
		t.Fatalf("assign: %v", err)
	}
	if err := r.SetAssignedWorkers("hull-042", "st-2", []string{"w3"}); err != nil {
		t.Fatalf("reassign: %v", err)
	}
	u, _ := r.GetUnit("hull-042")
	st, _ := u.Stage("st-2")
	if len(st.AssignedWorkers) != 1 || st.AssignedWorkers[0] != "w3" {
		t.Fatalf("assignment must be replaced wholesale, got %v", st.AssignedWorkers)
	}
	if err := r.SetAssignedWorkers("hull-042", "st-9", nil); !errors.Is(err, ErrStageNotFound) {
		t.Fatalf("expected ErrStageNotFound, got %v", err)
	}
}

func TestWorkers(t *testing.T) {
	r := NewMemoryRegistry()
	if err := r.PutWorker(model.Worker{ID: "w2", Name: "Riya", Availability: model.WorkerAvailable}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := r.PutWorker(model.Worker{ID: "w1", Name: "Sven", Availability: model.WorkerBusy}); err != nil {
		t.Fatalf("put: %v", err)
	}
	ws, err := r.ListWorkers()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(ws) != 2 || ws[0].ID != "w1" {
		t.Fatalf("expected ordered roster, got %v", ws)
	}
	if _, err := r.GetWorkerByID("w9"); !errors.Is(err, ErrWorkerNotFound) {
		t.Fatalf("expected ErrWorkerNotFound, got %v", err)
	}
}
