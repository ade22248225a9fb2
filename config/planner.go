package config

import (
	"fmt"

	"github.com/harborworks/slipway/core/model"
	"github.com/harborworks/slipway/core/timeline"
)

// PlannerConfig tunes the planning board session.
type PlannerConfig struct {
	// Granularity is the initial view span: "month", "quarter" or "year".
	Granularity string `json:"granularity"`
	// Anchor is an ISO date anchoring the initial view. Empty means today.
	Anchor string `json:"anchor"`
	// ReadOnly disables drag editing for the whole service.
	ReadOnly bool `json:"read_only"`
	// StageDurations overrides the default duration, in days, used to
	// synthesize an end date for stages that only have a start.
	StageDurations map[string]int `json:"stage_durations"`
}

// SetDefaults applies sane defaults.
func (c *PlannerConfig) SetDefaults() {
	if c.Granularity == "" {
		c.Granularity = string(timeline.GranularityQuarter)
	}
}

// Validate checks field values.
func (c PlannerConfig) Validate() error {
	switch timeline.Granularity(c.Granularity) {
	case timeline.GranularityMonth, timeline.GranularityQuarter, timeline.GranularityYear:
	default:
		return fmt.Errorf("unknown granularity %s", c.Granularity)
	}
	if c.Anchor != "" {
		if _, err := timeline.ParseISO(c.Anchor); err != nil {
			return fmt.Errorf("anchor: %w", err)
		}
	}
	for code, days := range c.StageDurations {
		if days <= 0 {
			return fmt.Errorf("stage duration for %s must be positive", code)
		}
	}
	return nil
}

// Durations converts the override table to the engine's keyed form.
func (c PlannerConfig) Durations() map[model.StageCode]int {
	if len(c.StageDurations) == 0 {
		return nil
	}
	out := make(map[model.StageCode]int, len(c.StageDurations))
	for code, days := range c.StageDurations {
		out[model.StageCode(code)] = days
	}
	return out
}
