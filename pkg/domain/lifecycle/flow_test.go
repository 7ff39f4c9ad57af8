package lifecycle

import (
	"testing"
	"time"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain/history"
	"github.com/felixgeelhaar/flowmetrics/pkg/domain/metrics"
)

var d0 = time.Date(2026, 2, 2, 8, 0, 0, 0, time.UTC)

func day(n int) time.Time { return d0.Add(time.Duration(n) * 24 * time.Hour) }

func entry(status string, start time.Time) history.Entry {
	return history.Entry{Status: status, Start: start}
}

func testFlow() *Flow {
	return NewFlow(metrics.Config{
		PauseStatus:        "paused",
		ReadyStatus:        "ready_for_dev",
		WorkStartedStatus:  "in_progress",
		ExternalTestStatus: "external_test",
		AfterExternalTest:  []string{"acceptance"},
		DoneStatuses:       metrics.NewTargetStatusSet("done-like", "done"),
		MinDuration:        5 * time.Minute,
	})
}

func TestFlow_Check_RegularHistory(t *testing.T) {
	f := testFlow()
	h := history.History{
		entry("created", day(0)),
		entry("ready_for_dev", day(1)),
		entry("in_progress", day(2)),
		entry("paused", day(3)),
		entry("in_progress", day(4)),
		entry("external_test", day(5)),
		entry("acceptance", day(6)),
		entry("done", day(7)),
	}
	got, err := f.Check(h)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Check() = %v, want no irregularities", got)
	}
}

func TestFlow_Check_FlagsSkippedStages(t *testing.T) {
	f := testFlow()
	h := history.History{
		entry("created", day(0)),
		entry("in_progress", day(1)),
		entry("done", day(2)),
		entry("paused", day(3)), // pausing a finished item
	}
	got, err := f.Check(h)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Check() = %v, want exactly one irregularity", got)
	}
	if got[0].From != "done" || got[0].To != "paused" {
		t.Errorf("Check() flagged %v, want done -> paused", got[0])
	}
}

func TestFlow_Check_FlagsUnknownStatus(t *testing.T) {
	f := testFlow()
	h := history.History{
		entry("created", day(0)),
		entry("in_progress", day(1)),
		entry("waiting_for_vendor", day(2)),
	}
	got, err := f.Check(h)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(got) != 1 || got[0].To != "waiting_for_vendor" {
		t.Errorf("Check() = %v, want the unknown status flagged", got)
	}
}

func TestFlow_Check_DisabledFilterReplaysInOrder(t *testing.T) {
	f := NewFlow(metrics.Config{
		PauseStatus:        "paused",
		ReadyStatus:        "ready_for_dev",
		WorkStartedStatus:  "in_progress",
		ExternalTestStatus: "external_test",
		DoneStatuses:       metrics.NewTargetStatusSet("done-like", "done"),
	})
	h := history.History{
		entry("done", day(3)),
		entry("in_progress", day(1)),
		entry("external_test", day(2)),
		entry("ready_for_dev", day(0)),
	}
	got, err := f.Check(h)
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Check() = %v, want snapshot order ignored", got)
	}
}

func TestFlow_Check_ShortHistories(t *testing.T) {
	f := testFlow()
	for _, h := range []history.History{nil, {entry("created", day(0))}} {
		got, err := f.Check(h)
		if err != nil {
			t.Fatalf("Check() error = %v", err)
		}
		if len(got) != 0 {
			t.Errorf("Check() = %v, want none for short history", got)
		}
	}
}
