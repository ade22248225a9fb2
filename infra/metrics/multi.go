package metrics

import coremetrics "github.com/harborworks/slipway/core/metrics"

// MultiSink fans board activity out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.PlanningSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.PlanningSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordCommit forwards the record to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordCommit(rec coremetrics.CommitRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordCommit(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordReschedule forwards the record to all sinks.
func (m *MultiSink) RecordReschedule(rec coremetrics.RescheduleRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordReschedule(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordAssignment forwards the record to all sinks.
func (m *MultiSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordAssignment(rec); err != nil {
			return err
		}
	}
	return nil
}

// SetPendingEdits forwards the gauge update to sinks that track it.
func (m *MultiSink) SetPendingEdits(n int) {
	for _, s := range m.Sinks {
		if g, ok := s.(coremetrics.PendingGaugeSink); ok {
			g.SetPendingEdits(n)
		}
	}
}
