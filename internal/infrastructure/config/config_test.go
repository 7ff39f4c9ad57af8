package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flowmetrics.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Statuses.Pause != "paused" {
		t.Errorf("Load() pause = %q, want default", cfg.Statuses.Pause)
	}
	if cfg.NoiseThresholdSeconds != 300 {
		t.Errorf("Load() threshold = %d, want 300", cfg.NoiseThresholdSeconds)
	}
	if cfg.Tracker.Kind != "file" {
		t.Errorf("Load() tracker kind = %q, want file", cfg.Tracker.Kind)
	}
}

func TestLoad_OverlaysFileOnDefaults(t *testing.T) {
	path := writeConfig(t, `
statuses:
  pause: "On Hold"
  done: ["Done", "Cancelled"]
noise_threshold_seconds: 60
quarters:
  - name: 2026Q1
    start: 2026-01-01
    end: 2026-04-01
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Statuses.Pause != "On Hold" {
		t.Errorf("Load() pause = %q, want On Hold", cfg.Statuses.Pause)
	}
	// Unset fields keep their defaults.
	if cfg.Statuses.Ready != "ready_for_dev" {
		t.Errorf("Load() ready = %q, want default", cfg.Statuses.Ready)
	}
	mc := cfg.MetricsConfig()
	if mc.MinDuration != time.Minute {
		t.Errorf("MetricsConfig() min duration = %v, want 1m", mc.MinDuration)
	}
	if !mc.DoneStatuses.Contains("Cancelled") {
		t.Error("MetricsConfig() done set lost a member")
	}
}

func TestLoad_InvalidConfig(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown tracker", "tracker:\n  kind: gitlab\n"},
		{"negative threshold", "noise_threshold_seconds: -1\n"},
		{"empty done set", "statuses:\n  done: []\n"},
		{"bad quarter date", "quarters:\n  - name: q\n    start: nope\n    end: 2026-04-01\n"},
		{"inverted quarter", "quarters:\n  - name: q\n    start: 2026-04-01\n    end: 2026-01-01\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Error("Load() error = nil, want validation error")
			}
		})
	}
}

func TestQuarter(t *testing.T) {
	path := writeConfig(t, `
quarters:
  - name: 2026Q1
    start: 2026-01-01
    end: 2026-04-01
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	p, ok := cfg.Quarter("2026Q1")
	if !ok {
		t.Fatal("Quarter() not found")
	}
	if p.Start.IsZero() || !p.Start.Before(p.End) {
		t.Errorf("Quarter() period = %+v", p)
	}
	if _, ok := cfg.Quarter("2030Q4"); ok {
		t.Error("Quarter() found a quarter that is not configured")
	}
}
