package timeline

import (
	"time"

	"github.com/harborworks/slipway/core/logger"
	"github.com/harborworks/slipway/core/model"
)

// minWidthFrac keeps zero-length or heavily clipped bars clickable.
const minWidthFrac = 0.005

// Interval is an inclusive calendar date range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Days returns the inclusive length of the interval in days.
func (iv Interval) Days() int {
	return DaysBetween(iv.Start, iv.End) + 1
}

// Placement positions a stage bar inside the view window. Left and Width
// are fractions of the window width in [0,1].
type Placement struct {
	Left  float64
	Width float64
	// Provisional marks placements produced from an uncommitted edit.
	Provisional bool
}

// Mapper projects stage intervals onto a view window.
type Mapper struct {
	window    ViewWindow
	durations map[model.StageCode]int
	log       logger.Logger
}

// NewMapper creates a Mapper for the window. durations overrides the
// default per-code duration table for entries it contains; it may be
// nil. log may be nil.
func NewMapper(w ViewWindow, durations map[model.StageCode]int, log logger.Logger) *Mapper {
	if log == nil {
		log = logger.Nop{}
	}
	return &Mapper{window: w, durations: durations, log: log}
}

// Window returns the mapper's view window.
func (m *Mapper) Window() ViewWindow { return m.window }

// durationDays resolves the fallback duration for a code.
func (m *Mapper) durationDays(code model.StageCode) int {
	if d, ok := m.durations[code]; ok && d > 0 {
		return d
	}
	return model.DefaultDurationDays(code)
}

// EffectiveInterval resolves the interval a stage occupies on the board:
// actual dates win over planned ones, and a missing end is synthesized
// from the duration table. ok is false when the stage has no usable
// start date; malformed dates are logged and reported the same way so a
// bad record cannot take down the whole board.
func (m *Mapper) EffectiveInterval(st model.StageEntry) (Interval, bool) {
	startRaw, endRaw := st.PlannedStart, st.PlannedEnd
	if st.ActualStart != "" {
		startRaw, endRaw = st.ActualStart, st.ActualEnd
	}
	if startRaw == "" {
		return Interval{}, false
	}
	start, err := ParseISO(startRaw)
	if err != nil {
		m.log.Warnf("stage %s: unparsable start date %q, hiding from board", st.ID, startRaw)
		return Interval{}, false
	}
	if endRaw == "" {
		return Interval{Start: start, End: AddDays(start, m.durationDays(st.Code)-1)}, true
	}
	end, err := ParseISO(endRaw)
	if err != nil {
		m.log.Warnf("stage %s: unparsable end date %q, hiding from board", st.ID, endRaw)
		return Interval{}, false
	}
	return Interval{Start: start, End: end}, true
}

// Place maps a stage onto the window, honoring an uncommitted edit when
// one is supplied. ok is false when the stage is not visible: it has no
// usable interval or the interval lies entirely outside the window.
func (m *Mapper) Place(st model.StageEntry, override *Interval) (Placement, bool) {
	var iv Interval
	provisional := false
	if override != nil {
		iv = *override
		provisional = true
	} else {
		var ok bool
		if iv, ok = m.EffectiveInterval(st); !ok {
			return Placement{}, false
		}
	}
	p, ok := m.place(iv)
	p.Provisional = provisional
	return p, ok
}

// place applies the clipping rule: intervals partially overlapping the
// window are truncated at the window edge, intervals fully outside are
// not visible at all.
func (m *Mapper) place(iv Interval) (Placement, bool) {
	total := m.window.TotalDays
	if total <= 0 {
		return Placement{}, false
	}
	offset := DaysBetween(m.window.Start, iv.Start)
	duration := iv.Days()
	if offset+duration < 0 || offset > total {
		return Placement{}, false
	}
	visibleStart := offset
	if visibleStart < 0 {
		visibleStart = 0
	}
	visibleEnd := offset + duration
	if visibleEnd > total {
		visibleEnd = total
	}
	left := float64(visibleStart) / float64(total)
	width := float64(visibleEnd-visibleStart) / float64(total)
	if width < minWidthFrac {
		width = minWidthFrac
	}
	return Placement{Left: left, Width: width}, true
}
