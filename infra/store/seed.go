package store

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/harborworks/slipway/core/model"
)

// Seed is a fleet and roster fixture loaded from a YAML or JSON file,
// used to populate a fresh registry.
type Seed struct {
	Units   []model.Unit   `json:"units" yaml:"units"`
	Workers []model.Worker `json:"workers" yaml:"workers"`
}

// Writer is the subset of a registry backend a seed can populate.
type Writer interface {
	PutUnit(model.Unit) error
	PutWorker(model.Worker) error
}

// LoadSeed reads a seed fixture from a JSON or YAML file. Units, stages
// and workers without an id are given a generated one.
func LoadSeed(path string) (Seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return Seed{}, err
	}
	defer func() { _ = f.Close() }()
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return DecodeSeed(f, ext)
}

// DecodeSeed reads a seed fixture from r in the given format.
func DecodeSeed(r io.Reader, format string) (Seed, error) {
	var seed Seed
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.NewDecoder(r).Decode(&seed); err != nil {
			return seed, err
		}
	case "json":
		if err := json.NewDecoder(r).Decode(&seed); err != nil {
			return seed, err
		}
	default:
		return seed, fmt.Errorf("unsupported seed format: %s", format)
	}
	for i := range seed.Units {
		if seed.Units[i].ID == "" {
			seed.Units[i].ID = uuid.NewString()
		}
		if seed.Units[i].Status == "" {
			seed.Units[i].Status = model.UnitPlanned
		}
		for j := range seed.Units[i].Stages {
			if seed.Units[i].Stages[j].ID == "" {
				seed.Units[i].Stages[j].ID = uuid.NewString()
			}
			if seed.Units[i].Stages[j].Status == "" {
				seed.Units[i].Stages[j].Status = model.StagePending
			}
		}
	}
	for i := range seed.Workers {
		if seed.Workers[i].ID == "" {
			seed.Workers[i].ID = uuid.NewString()
		}
		if seed.Workers[i].Availability == "" {
			seed.Workers[i].Availability = model.WorkerAvailable
		}
	}
	return seed, nil
}

// Apply writes the seed into a registry backend.
func (s Seed) Apply(w Writer) error {
	for _, u := range s.Units {
		if err := w.PutUnit(u); err != nil {
			return fmt.Errorf("seed unit %s: %w", u.ID, err)
		}
	}
	for _, wk := range s.Workers {
		if err := w.PutWorker(wk); err != nil {
			return fmt.Errorf("seed worker %s: %w", wk.ID, err)
		}
	}
	return nil
}
