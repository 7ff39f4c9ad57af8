package metrics

import (
	"testing"
	"time"
)

func newDoneResolver() TerminalResolver {
	return NewTerminalResolver(
		NewTargetStatusSet("done-like", "done", "cancelled"),
		"paused",
		5*time.Minute,
	)
}

func TestTerminalResolver_Resolve(t *testing.T) {
	r := newDoneResolver()

	t.Run("no done-like entry", func(t *testing.T) {
		res := r.Resolve(historyOf(
			entry("created", day(0)),
			entry("in_progress", day(1)),
		))
		if res.Found {
			t.Errorf("Resolve() found %q, want not found", res.Entry.Status)
		}
	})

	t.Run("single occurrence is returned as stable", func(t *testing.T) {
		res := r.Resolve(historyOf(
			entry("created", day(0)),
			entry("done", day(3)),
		))
		if !res.Found || !res.Stable {
			t.Fatalf("Resolve() found=%v stable=%v, want found stable", res.Found, res.Stable)
		}
		if !res.Entry.Start.Equal(day(3)) {
			t.Errorf("Resolve() start = %v, want %v", res.Entry.Start, day(3))
		}
	})

	t.Run("reverted completion is skipped", func(t *testing.T) {
		res := r.Resolve(historyOf(
			entry("created", day(0)),
			entry("done", day(1)),
			entry("in_progress", day(2)),
			entry("done", day(5)),
		))
		if !res.Found || !res.Stable {
			t.Fatalf("Resolve() found=%v stable=%v, want found stable", res.Found, res.Stable)
		}
		if !res.Entry.Start.Equal(day(5)) {
			t.Errorf("Resolve() picked %v, want second completion at %v", res.Entry.Start, day(5))
		}
	})

	t.Run("pause after completion does not invalidate it", func(t *testing.T) {
		res := r.Resolve(historyOf(
			entry("created", day(0)),
			entry("done", day(1)),
			entry("paused", day(2)),
			entry("done", day(5)),
		))
		if !res.Found || !res.Stable {
			t.Fatalf("Resolve() found=%v stable=%v, want found stable", res.Found, res.Stable)
		}
		// Both candidates are stable; the later one wins.
		if !res.Entry.Start.Equal(day(5)) {
			t.Errorf("Resolve() picked %v, want %v", res.Entry.Start, day(5))
		}
	})

	t.Run("no stable candidate falls back to the first", func(t *testing.T) {
		res := r.Resolve(historyOf(
			entry("created", day(0)),
			entry("done", day(1)),
			entry("in_progress", day(2)),
			entry("done", day(3)),
			entry("in_progress", day(4)),
		))
		if !res.Found {
			t.Fatal("Resolve() not found, want fallback")
		}
		if res.Stable {
			t.Error("Resolve() stable = true, want unstable fallback")
		}
		if !res.Entry.Start.Equal(day(1)) {
			t.Errorf("Resolve() picked %v, want first occurrence at %v", res.Entry.Start, day(1))
		}
	})

	t.Run("noisy accidental completion is filtered before resolving", func(t *testing.T) {
		res := r.Resolve(historyOf(
			entry("created", day(0)),
			entry("in_progress", day(1)),
			entry("done", day(2)),
			entry("in_progress", day(2).Add(30*time.Second)),
			entry("done", day(6)),
		))
		if !res.Found || !res.Stable {
			t.Fatalf("Resolve() found=%v stable=%v, want found stable", res.Found, res.Stable)
		}
		if !res.Entry.Start.Equal(day(6)) {
			t.Errorf("Resolve() picked %v, want %v", res.Entry.Start, day(6))
		}
	})

	t.Run("disabled filter still resolves chronologically", func(t *testing.T) {
		unfiltered := NewTerminalResolver(NewTargetStatusSet("done-like", "done"), "paused", 0)
		res := unfiltered.Resolve(historyOf(
			entry("done", day(3)),
			entry("in_progress", day(2)),
			entry("done", day(1)),
		))
		if !res.Found || !res.Stable {
			t.Fatalf("Resolve() found=%v stable=%v, want found stable", res.Found, res.Stable)
		}
		if !res.Entry.Start.Equal(day(3)) {
			t.Errorf("Resolve() picked %v, want chronologically last completion at %v", res.Entry.Start, day(3))
		}
	})

	t.Run("empty target set", func(t *testing.T) {
		empty := NewTerminalResolver(NewTargetStatusSet("empty"), "paused", 5*time.Minute)
		res := empty.Resolve(historyOf(entry("done", day(1))))
		if res.Found {
			t.Error("Resolve() with empty target set found a candidate")
		}
	})

	t.Run("empty history", func(t *testing.T) {
		if res := r.Resolve(nil); res.Found {
			t.Error("Resolve() on empty history found a candidate")
		}
	})
}
