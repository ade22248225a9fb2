package store

import (
	"bytes"
	"testing"

	"github.com/harborworks/slipway/core/model"
	"github.com/harborworks/slipway/core/registry"
)

const seedYAML = `
units:
  - id: hull-042
    name: MV Aurora
    category: maintenance
    status: in_production
    stages:
      - code: haul_out
        status: completed
        actual_start: "2024-01-02"
        actual_end: "2024-01-02"
      - code: repairs
        planned_start: "2024-01-03"
        planned_end: "2024-01-17"
workers:
  - name: Sven
    skills: [repairs, hull_cleaning]
`

func TestDecodeSeedYAML(t *testing.T) {
	seed, err := DecodeSeed(bytes.NewBufferString(seedYAML), "yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(seed.Units) != 1 || len(seed.Workers) != 1 {
		t.Fatalf("unexpected seed %+v", seed)
	}
	u := seed.Units[0]
	if u.ID != "hull-042" || len(u.Stages) != 2 {
		t.Fatalf("unexpected unit %+v", u)
	}
	if u.Stages[0].ID == "" || u.Stages[1].ID == "" {
		t.Fatalf("stage ids should be generated")
	}
	if u.Stages[1].Status != model.StagePending {
		t.Fatalf("missing status should default to pending, got %s", u.Stages[1].Status)
	}
	w := seed.Workers[0]
	if w.ID == "" {
		t.Fatalf("worker id should be generated")
	}
	if w.Availability != model.WorkerAvailable {
		t.Fatalf("missing availability should default to available")
	}
	if !w.HasSkill(model.StageRepairs) {
		t.Fatalf("skills not decoded: %+v", w)
	}
}

func TestDecodeSeedJSON(t *testing.T) {
	data := `{"units":[{"id":"hull-001","name":"Hull 1","category":"new_build","stages":[{"code":"keel_laying","status":"pending"}]}]}`
	seed, err := DecodeSeed(bytes.NewBufferString(data), "json")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(seed.Units) != 1 || seed.Units[0].Stages[0].Code != model.StageKeelLaying {
		t.Fatalf("unexpected seed %+v", seed)
	}
}

func TestDecodeSeedUnsupportedFormat(t *testing.T) {
	if _, err := DecodeSeed(bytes.NewBufferString("x"), "toml"); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestSeedApply(t *testing.T) {
	seed, err := DecodeSeed(bytes.NewBufferString(seedYAML), "yaml")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	reg := registry.NewMemoryRegistry()
	if err := seed.Apply(reg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	units, _ := reg.ListUnits()
	workers, _ := reg.ListWorkers()
	if len(units) != 1 || len(workers) != 1 {
		t.Fatalf("seed not applied: %d units, %d workers", len(units), len(workers))
	}
}
