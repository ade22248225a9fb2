// Package export renders the committed production plan for external
// consumers (spreadsheets, ERP imports).
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/harborworks/slipway/core/model"
)

// PlanEntry is one stage of one unit, flattened for export.
type PlanEntry struct {
	UnitID       string `json:"unit_id"`
	UnitName     string `json:"unit_name"`
	Category     string `json:"category"`
	StageID      string `json:"stage_id"`
	Code         string `json:"code"`
	Status       string `json:"status"`
	PlannedStart string `json:"planned_start"`
	PlannedEnd   string `json:"planned_end"`
	ActualStart  string `json:"actual_start,omitempty"`
	ActualEnd    string `json:"actual_end,omitempty"`
	Workers      int    `json:"workers"`
}

// Flatten converts units into export entries, preserving unit and
// stage order.
func Flatten(units []model.Unit) []PlanEntry {
	var out []PlanEntry
	for _, u := range units {
		for _, st := range u.Stages {
			out = append(out, PlanEntry{
				UnitID:       u.ID,
				UnitName:     u.Name,
				Category:     string(u.Category),
				StageID:      st.ID,
				Code:         string(st.Code),
				Status:       string(st.Status),
				PlannedStart: st.PlannedStart,
				PlannedEnd:   st.PlannedEnd,
				ActualStart:  st.ActualStart,
				ActualEnd:    st.ActualEnd,
				Workers:      len(st.AssignedWorkers),
			})
		}
	}
	return out
}

// WriteJSON writes the plan to w in JSON format.
func WriteJSON(w io.Writer, entries []PlanEntry) error {
	enc := json.NewEncoder(w)
	return enc.Encode(entries)
}

// WriteCSV writes the plan to w in CSV format.
func WriteCSV(w io.Writer, entries []PlanEntry) error {
	cw := csv.NewWriter(w)
	header := []string{
		"unit_id", "unit_name", "category", "stage_id", "code",
		"status", "planned_start", "planned_end", "actual_start", "actual_end", "workers",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range entries {
		rec := []string{
			e.UnitID, e.UnitName, e.Category, e.StageID, e.Code,
			e.Status, e.PlannedStart, e.PlannedEnd, e.ActualStart, e.ActualEnd,
			strconv.Itoa(e.Workers),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
