package report

import (
	"strings"
	"testing"
	"time"

	"github.com/timmy/batchpub/internal/domain"
	"github.com/timmy/batchpub/internal/pipeline"
	"github.com/timmy/batchpub/internal/service"
)

func TestSummary(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := Summary(&service.RunStats{
		RunID:     "run-1",
		Schedule:  "immediate",
		Uploaded:  2,
		Missing:   1,
		Total:     3,
		Cancelled: true,
		StartTime: start,
		EndTime:   start.Add(1500 * time.Millisecond),
	})

	for _, want := range []string{"Run run-1", "mode: publish", "uploaded", "missing file", "took: 1.5s", "cancelled"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRows(t *testing.T) {
	at := time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC)
	out := Rows([]pipeline.RowResult{
		{
			Job:     pipeline.Job{Row: 1, Identifier: "1", Slot: 0, PublishAt: &at},
			State:   pipeline.StateUploaded,
			Outcome: pipeline.Outcome{Kind: pipeline.KindUploaded, RemoteID: "vid-1"},
		},
		{
			Job:     pipeline.Job{Row: 2, Identifier: "2", Slot: -1},
			State:   pipeline.StateFailed,
			Outcome: pipeline.Outcome{Kind: pipeline.KindFailed, Message: strings.Repeat("x", 80)},
		},
	})

	for _, want := range []string{"vid-1", "2025-01-01T01:00:00Z", "failed", "…"} {
		if !strings.Contains(out, want) {
			t.Errorf("rows missing %q:\n%s", want, out)
		}
	}
}

func TestHistory(t *testing.T) {
	if out := History(nil); !strings.Contains(out, "No runs recorded") {
		t.Errorf("unexpected empty output %q", out)
	}

	out := History([]domain.PublishRun{{
		ID:        "0123456789abcdef",
		SheetPath: "plan.xlsx",
		Status:    domain.RunStatusCompleted,
		Uploaded:  4,
		StartedAt: time.Now(),
	}})
	if !strings.Contains(out, "01234567") || strings.Contains(out, "0123456789") {
		t.Errorf("run id should be shortened:\n%s", out)
	}
	if !strings.Contains(out, "completed") || !strings.Contains(out, "plan.xlsx") {
		t.Errorf("unexpected history output:\n%s", out)
	}
}

func TestRecordedRows(t *testing.T) {
	slot := 3
	at := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	out := RecordedRows([]domain.RowResult{
		{RowNumber: 5, Identifier: "7", Outcome: "uploaded", Slot: &slot, PublishAt: &at, StatusText: "ok"},
		{RowNumber: 6, Identifier: "8", Outcome: "missing_file"},
	})
	for _, want := range []string{"missing_file", "2025-02-01T09:00:00Z", " 3 "} {
		if !strings.Contains(out, want) {
			t.Errorf("recorded rows missing %q:\n%s", want, out)
		}
	}
}
