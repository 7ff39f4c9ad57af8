package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeFixture creates a config plus a snapshot with one finished and one
// open work item, and points the global config flag at it.
func writeFixture(t *testing.T) {
	t.Helper()
	dir := t.TempDir()

	snapshot := filepath.Join(dir, "items.json")
	if err := os.WriteFile(snapshot, []byte(`{
		"items": [
			{
				"key": "FLOW-1",
				"title": "Checkout rework",
				"author": "ada",
				"team": "payments",
				"created_at": "2026-01-01T00:00:00Z",
				"history": [
					{"status": "ready_for_dev", "start": "2026-01-01T00:00:00Z"},
					{"status": "in_progress", "start": "2026-01-03T00:00:00Z"},
					{"status": "external_test", "start": "2026-01-08T00:00:00Z"},
					{"status": "done", "start": "2026-01-11T00:00:00Z"}
				]
			},
			{
				"key": "FLOW-2",
				"title": "Search indexing",
				"author": "lin",
				"team": "discovery",
				"created_at": "2026-02-01T00:00:00Z",
				"history": [
					{"status": "in_progress", "start": "2026-02-01T00:00:00Z"}
				]
			}
		]
	}`), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}

	cfgPath := filepath.Join(dir, "flowmetrics.yaml")
	if err := os.WriteFile(cfgPath, []byte(`
tracker:
  kind: file
  snapshot: `+snapshot+`
quarters:
  - name: Q1
    start: 2026-01-01
    end: 2026-04-01
`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	prev := configPath
	configPath = cfgPath
	t.Cleanup(func() { configPath = prev })
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetArgs(args)
	err := RootCmd.Execute()
	return out.String(), err
}

func TestReportCommand(t *testing.T) {
	writeFixture(t)

	out, err := runCommand(t, "report", "--group-by", "team", "--quarter", "Q1")
	if err != nil {
		t.Fatalf("report error = %v", err)
	}
	if !strings.Contains(out, "payments (1 items)") {
		t.Errorf("output missing payments group:\n%s", out)
	}
	if !strings.Contains(out, "TTM") {
		t.Errorf("output missing TTM line:\n%s", out)
	}
}

func TestReportCommandJSON(t *testing.T) {
	writeFixture(t)
	t.Cleanup(func() { reportJSON = false })

	out, err := runCommand(t, "report", "--group-by", "author", "--quarter", "Q1", "--json")
	if err != nil {
		t.Fatalf("report error = %v", err)
	}
	if !strings.Contains(out, `"group": "ada"`) {
		t.Errorf("JSON output missing author group:\n%s", out)
	}
}

func TestReportCommandRejectsBadGroupBy(t *testing.T) {
	writeFixture(t)

	if _, err := runCommand(t, "report", "--group-by", "priority"); err == nil {
		t.Error("expected error for unknown group-by")
	}
	reportGroupBy = "team"
}

func TestItemCommand(t *testing.T) {
	writeFixture(t)

	out, err := runCommand(t, "item", "FLOW-1")
	if err != nil {
		t.Fatalf("item error = %v", err)
	}
	if !strings.Contains(out, "FLOW-1") || !strings.Contains(out, "Checkout rework") {
		t.Errorf("output missing item header:\n%s", out)
	}
	if !strings.Contains(out, "TTM    10d") {
		t.Errorf("output missing TTM value:\n%s", out)
	}
}

func TestItemCommandNotFound(t *testing.T) {
	writeFixture(t)

	if _, err := runCommand(t, "item", "FLOW-404"); err == nil {
		t.Error("expected error for unknown item")
	}
}

func TestPauseCommand(t *testing.T) {
	writeFixture(t)

	out, err := runCommand(t, "pause")
	if err != nil {
		t.Fatalf("pause error = %v", err)
	}
	if !strings.Contains(out, "FLOW-1") || !strings.Contains(out, "FLOW-2") {
		t.Errorf("output missing items:\n%s", out)
	}
}

func TestDwellCommand(t *testing.T) {
	writeFixture(t)

	out, err := runCommand(t, "dwell", "in_progress")
	if err != nil {
		t.Fatalf("dwell error = %v", err)
	}
	if !strings.Contains(out, "FLOW-1") {
		t.Errorf("output missing FLOW-1:\n%s", out)
	}
}

func TestValidateCommand(t *testing.T) {
	writeFixture(t)

	out, err := runCommand(t, "validate")
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	if !strings.Contains(out, "follow the configured flow") {
		t.Errorf("unexpected validate output:\n%s", out)
	}
}
