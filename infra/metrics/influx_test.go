package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/harborworks/slipway/core/metrics"
	"github.com/harborworks/slipway/core/staging"
)

func TestInfluxSinkRecordCommit(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	start := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)
	rec := coremetrics.CommitRecord{
		Outcomes: []staging.Outcome{{
			UnitID:  "hull-042",
			StageID: "st-2",
			Status:  staging.StatusCommitted,
			Start:   start,
			End:     end,
		}},
		Time: now,
	}
	if err := sink.RecordCommit(rec); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("board_commit_entry").
		AddTag("unit_id", "hull-042").
		AddTag("stage_id", "st-2").
		AddTag("status", "committed").
		AddTag("reason", "").
		AddField("duration_days", 11).
		SetTime(now)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body: %s", body)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	sink := NewInfluxSinkWithFallback(srv.URL, "token", "org", "bucket")
	if _, ok := sink.(coremetrics.NopSink); !ok {
		t.Fatalf("expected NopSink fallback when health check fails")
	}
}
