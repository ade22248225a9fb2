package metrics

import (
	"testing"

	coremetrics "github.com/harborworks/slipway/core/metrics"
)

type recordSink struct {
	count   int
	pending int
}

func (r *recordSink) RecordCommit(coremetrics.CommitRecord) error {
	r.count++
	return nil
}

func (r *recordSink) RecordReschedule(coremetrics.RescheduleRecord) error {
	r.count++
	return nil
}

func (r *recordSink) RecordAssignment(coremetrics.AssignmentRecord) error {
	r.count++
	return nil
}

func (r *recordSink) SetPendingEdits(n int) { r.pending = n }

func TestMultiSink(t *testing.T) {
	s1 := &recordSink{}
	s2 := &recordSink{}
	m := NewMultiSink(s1, s2)
	if err := m.RecordCommit(coremetrics.CommitRecord{}); err != nil {
		t.Fatalf("record commit: %v", err)
	}
	if err := m.RecordReschedule(coremetrics.RescheduleRecord{}); err != nil {
		t.Fatalf("record reschedule: %v", err)
	}
	if err := m.RecordAssignment(coremetrics.AssignmentRecord{}); err != nil {
		t.Fatalf("record assignment: %v", err)
	}
	m.SetPendingEdits(4)
	if s1.count != 3 || s2.count != 3 {
		t.Fatalf("records not forwarded")
	}
	if s1.pending != 4 || s2.pending != 4 {
		t.Fatalf("gauge not forwarded")
	}
}
