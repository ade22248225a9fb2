package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/harborworks/slipway/core/metrics"
	"github.com/harborworks/slipway/core/staging"
	"github.com/harborworks/slipway/infra/logger"
)

// InfluxSink writes board activity to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so a missing telemetry store never
// blocks planning.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.PlanningSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordCommit writes one point per outcome in the batch.
func (s *InfluxSink) RecordCommit(rec coremetrics.CommitRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	for _, o := range rec.Outcomes {
		p := write.NewPointWithMeasurement("board_commit_entry").
			AddTag("unit_id", o.UnitID).
			AddTag("stage_id", o.StageID).
			AddTag("status", string(o.Status)).
			AddTag("reason", string(o.Reason)).
			AddField("duration_days", durationDays(o)).
			SetTime(rec.Time)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordReschedule writes the completed gesture.
func (s *InfluxSink) RecordReschedule(rec coremetrics.RescheduleRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("board_reschedule").
		AddTag("unit_id", rec.UnitID).
		AddTag("stage_id", rec.StageID).
		AddTag("kind", rec.Kind).
		AddField("delta_days", rec.DeltaDays).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordAssignment writes the assignment replacement.
func (s *InfluxSink) RecordAssignment(rec coremetrics.AssignmentRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("board_assignment").
		AddTag("unit_id", rec.UnitID).
		AddTag("stage_id", rec.StageID).
		AddField("workers", rec.Workers).
		AddField("warnings", rec.Warnings).
		SetTime(rec.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close shuts down the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func durationDays(o staging.Outcome) int {
	if o.Status != staging.StatusCommitted {
		return 0
	}
	return int(o.End.Sub(o.Start)/(24*time.Hour)) + 1
}
