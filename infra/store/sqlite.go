// Package store provides persistent registry backends. The scheduling
// engine only sees the registry.Registry contract; whether records live
// in memory or a SQLite file is a deployment choice.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/harborworks/slipway/core/model"
	"github.com/harborworks/slipway/core/registry"
)

// SQLiteRegistry persists units, stages and the worker roster in a
// SQLite database.
type SQLiteRegistry struct {
	db *sql.DB
}

// NewSQLiteRegistry opens or creates the database and ensures schema.
func NewSQLiteRegistry(path string) (*SQLiteRegistry, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `
    CREATE TABLE IF NOT EXISTS units (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        category TEXT NOT NULL,
        status TEXT NOT NULL
    );
    CREATE TABLE IF NOT EXISTS stages (
        unit_id TEXT NOT NULL,
        id TEXT NOT NULL,
        code TEXT NOT NULL,
        planned_start TEXT NOT NULL DEFAULT '',
        planned_end TEXT NOT NULL DEFAULT '',
        actual_start TEXT NOT NULL DEFAULT '',
        actual_end TEXT NOT NULL DEFAULT '',
        status TEXT NOT NULL,
        assigned TEXT NOT NULL DEFAULT '[]',
        pos INTEGER NOT NULL,
        PRIMARY KEY(unit_id, id),
        FOREIGN KEY(unit_id) REFERENCES units(id) ON DELETE CASCADE
    );
    CREATE TABLE IF NOT EXISTS workers (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL,
        skills TEXT NOT NULL DEFAULT '[]',
        availability TEXT NOT NULL
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteRegistry{db: db}, nil
}

// Close closes the underlying database.
func (s *SQLiteRegistry) Close() error { return s.db.Close() }

// PutUnit validates and stores a unit, replacing any prior record and
// its stages.
func (s *SQLiteRegistry) PutUnit(u model.Unit) error {
	if err := u.Validate(); err != nil {
		return fmt.Errorf("put unit: %w", err)
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`INSERT INTO units (id, name, category, status)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET name=excluded.name,
            category=excluded.category, status=excluded.status`,
		u.ID, u.Name, string(u.Category), string(u.Status)); err != nil {
		return err
	}
	if err := replaceStages(tx, u.ID, u.Stages); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteUnit removes a unit and its stages. Unknown ids are a no-op.
func (s *SQLiteRegistry) DeleteUnit(unitID string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.Exec(`DELETE FROM stages WHERE unit_id = ?`, unitID); err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM units WHERE id = ?`, unitID); err != nil {
		return err
	}
	return tx.Commit()
}

// PutWorker stores a roster entry.
func (s *SQLiteRegistry) PutWorker(w model.Worker) error {
	if w.ID == "" {
		return fmt.Errorf("put worker: id is required")
	}
	skills, err := json.Marshal(w.Skills)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`INSERT INTO workers (id, name, skills, availability)
        VALUES (?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET name=excluded.name,
            skills=excluded.skills, availability=excluded.availability`,
		w.ID, w.Name, string(skills), string(w.Availability))
	return err
}

func (s *SQLiteRegistry) ListUnits() ([]model.Unit, error) {
	rows, err := s.db.Query(`SELECT id, name, category, status FROM units ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var units []model.Unit
	for rows.Next() {
		var u model.Unit
		var cat, status string
		if err := rows.Scan(&u.ID, &u.Name, &cat, &status); err != nil {
			return nil, err
		}
		u.Category = model.UnitCategory(cat)
		u.Status = model.UnitStatus(status)
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range units {
		stages, err := s.loadStages(units[i].ID)
		if err != nil {
			return nil, err
		}
		units[i].Stages = stages
	}
	return units, nil
}

func (s *SQLiteRegistry) GetUnit(unitID string) (model.Unit, error) {
	var u model.Unit
	var cat, status string
	err := s.db.QueryRow(`SELECT id, name, category, status FROM units WHERE id = ?`, unitID).
		Scan(&u.ID, &u.Name, &cat, &status)
	if err == sql.ErrNoRows {
		return model.Unit{}, fmt.Errorf("%w: %s", registry.ErrUnitNotFound, unitID)
	}
	if err != nil {
		return model.Unit{}, err
	}
	u.Category = model.UnitCategory(cat)
	u.Status = model.UnitStatus(status)
	if u.Stages, err = s.loadStages(unitID); err != nil {
		return model.Unit{}, err
	}
	return u, nil
}

func (s *SQLiteRegistry) UpdateUnitTimeline(unitID string, stages []model.StageEntry) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	var one int
	if err := tx.QueryRow(`SELECT 1 FROM units WHERE id = ?`, unitID).Scan(&one); err == sql.ErrNoRows {
		return fmt.Errorf("%w: %s", registry.ErrUnitNotFound, unitID)
	} else if err != nil {
		return err
	}
	if err := replaceStages(tx, unitID, stages); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteRegistry) SetAssignedWorkers(unitID, stageID string, workerIDs []string) error {
	assigned, err := json.Marshal(workerIDs)
	if err != nil {
		return err
	}
	res, err := s.db.Exec(`UPDATE stages SET assigned = ? WHERE unit_id = ? AND id = ?`,
		string(assigned), unitID, stageID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var one int
		if err := s.db.QueryRow(`SELECT 1 FROM units WHERE id = ?`, unitID).Scan(&one); err == sql.ErrNoRows {
			return fmt.Errorf("%w: %s", registry.ErrUnitNotFound, unitID)
		} else if err != nil {
			return err
		}
		return fmt.Errorf("%w: %s/%s", registry.ErrStageNotFound, unitID, stageID)
	}
	return nil
}

func (s *SQLiteRegistry) ListWorkers() ([]model.Worker, error) {
	rows, err := s.db.Query(`SELECT id, name, skills, availability FROM workers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var workers []model.Worker
	for rows.Next() {
		w, err := scanWorker(rows.Scan)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (s *SQLiteRegistry) GetWorkerByID(workerID string) (model.Worker, error) {
	row := s.db.QueryRow(`SELECT id, name, skills, availability FROM workers WHERE id = ?`, workerID)
	w, err := scanWorker(row.Scan)
	if err == sql.ErrNoRows {
		return model.Worker{}, fmt.Errorf("%w: %s", registry.ErrWorkerNotFound, workerID)
	}
	return w, err
}

func (s *SQLiteRegistry) loadStages(unitID string) ([]model.StageEntry, error) {
	rows, err := s.db.Query(`SELECT id, code, planned_start, planned_end,
        actual_start, actual_end, status, assigned
        FROM stages WHERE unit_id = ? ORDER BY pos`, unitID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var stages []model.StageEntry
	for rows.Next() {
		var st model.StageEntry
		var code, status, assigned string
		if err := rows.Scan(&st.ID, &code, &st.PlannedStart, &st.PlannedEnd,
			&st.ActualStart, &st.ActualEnd, &status, &assigned); err != nil {
			return nil, err
		}
		st.Code = model.StageCode(code)
		st.Status = model.StageStatus(status)
		if err := json.Unmarshal([]byte(assigned), &st.AssignedWorkers); err != nil {
			return nil, fmt.Errorf("stage %s: bad assignment list: %w", st.ID, err)
		}
		stages = append(stages, st)
	}
	return stages, rows.Err()
}

func replaceStages(tx *sql.Tx, unitID string, stages []model.StageEntry) error {
	if _, err := tx.Exec(`DELETE FROM stages WHERE unit_id = ?`, unitID); err != nil {
		return err
	}
	for i, st := range stages {
		assigned, err := json.Marshal(st.AssignedWorkers)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO stages
            (unit_id, id, code, planned_start, planned_end, actual_start, actual_end, status, assigned, pos)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			unitID, st.ID, string(st.Code), st.PlannedStart, st.PlannedEnd,
			st.ActualStart, st.ActualEnd, string(st.Status), string(assigned), i); err != nil {
			return err
		}
	}
	return nil
}

func scanWorker(scan func(...any) error) (model.Worker, error) {
	var w model.Worker
	var skills, availability string
	if err := scan(&w.ID, &w.Name, &skills, &availability); err != nil {
		return model.Worker{}, err
	}
	if err := json.Unmarshal([]byte(skills), &w.Skills); err != nil {
		return model.Worker{}, fmt.Errorf("worker %s: bad skill list: %w", w.ID, err)
	}
	w.Availability = model.WorkerAvailability(availability)
	return w, nil
}
