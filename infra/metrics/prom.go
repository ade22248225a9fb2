package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/harborworks/slipway/core/metrics"
	"github.com/harborworks/slipway/core/staging"
)

// PromSink records board activity in Prometheus metrics.
type PromSink struct {
	commits      *prometheus.CounterVec
	reschedules  *prometheus.CounterVec
	dragDelta    prometheus.Histogram
	assignments  prometheus.Counter
	pendingEdits prometheus.Gauge
}

// NewPromSink registers board metrics on the default Prometheus
// registerer. The metrics endpoint is served separately via
// StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global one.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	commits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_commit_entries_total",
		Help: "Staged edits processed by commits, by outcome",
	}, []string{"status", "reason"})
	reschedules := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_reschedules_total",
		Help: "Completed drag gestures, by kind",
	}, []string{"kind"})
	dragDelta := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "board_drag_delta_days",
		Help:    "Absolute day delta applied by completed drag gestures",
		Buckets: []float64{1, 2, 3, 5, 7, 14, 30, 60, 90},
	})
	assignments := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "board_assignments_total",
		Help: "Stage assignment replacements",
	})
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "board_pending_edits",
		Help: "Staged edits awaiting commit or discard",
	})

	for _, c := range []prometheus.Collector{commits, reschedules, dragDelta, assignments, pending} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, err
			}
		}
	}
	return &PromSink{
		commits:      commits,
		reschedules:  reschedules,
		dragDelta:    dragDelta,
		assignments:  assignments,
		pendingEdits: pending,
	}, nil
}

// RecordCommit counts each outcome of the batch.
func (s *PromSink) RecordCommit(rec coremetrics.CommitRecord) error {
	for _, o := range rec.Outcomes {
		reason := ""
		if o.Status == staging.StatusSkipped {
			reason = string(o.Reason)
		}
		s.commits.WithLabelValues(string(o.Status), reason).Inc()
	}
	return nil
}

// RecordReschedule counts the gesture and observes its day delta.
func (s *PromSink) RecordReschedule(rec coremetrics.RescheduleRecord) error {
	s.reschedules.WithLabelValues(rec.Kind).Inc()
	d := rec.DeltaDays
	if d < 0 {
		d = -d
	}
	s.dragDelta.Observe(float64(d))
	return nil
}

// RecordAssignment counts assignment replacements.
func (s *PromSink) RecordAssignment(coremetrics.AssignmentRecord) error {
	s.assignments.Inc()
	return nil
}

// SetPendingEdits tracks the size of the staging area.
func (s *PromSink) SetPendingEdits(n int) {
	s.pendingEdits.Set(float64(n))
}

// StartPromServer serves the metrics endpoint on the given port until
// the context is cancelled. It blocks, so callers run it in a goroutine.
func StartPromServer(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: fmt.Sprintf(":%s", port), Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
