package history

import (
	"reflect"
	"testing"
	"time"
)

var base = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func at(d time.Duration) time.Time { return base.Add(d) }

func entry(status string, start time.Time) Entry {
	return Entry{Status: status, DisplayStatus: status, Start: start}
}

func statuses(h History) []string {
	out := make([]string, len(h))
	for i, e := range h {
		out[i] = e.Status
	}
	return out
}

func TestSorted_OrdersByStart(t *testing.T) {
	h := History{
		entry("done", at(48*time.Hour)),
		entry("created", at(0)),
		entry("in_progress", at(24*time.Hour)),
	}
	got := statuses(Sorted(h))
	want := []string{"created", "in_progress", "done"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sorted() order = %v, want %v", got, want)
	}
}

func TestSorted_StableForEqualStarts(t *testing.T) {
	h := History{
		entry("first", at(0)),
		entry("second", at(0)),
		entry("third", at(0)),
	}
	got := statuses(Sorted(h))
	want := []string{"first", "second", "third"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Sorted() order = %v, want %v", got, want)
	}
}

func TestSorted_NormalizesToUTC(t *testing.T) {
	zone := time.FixedZone("MSK", 3*60*60)
	h := History{entry("created", time.Date(2026, 3, 1, 15, 0, 0, 0, zone))}
	got := Sorted(h)
	if got[0].Start.Location() != time.UTC {
		t.Errorf("Sorted() location = %v, want UTC", got[0].Start.Location())
	}
	if !got[0].Start.Equal(base) {
		t.Errorf("Sorted() start = %v, want %v", got[0].Start, base)
	}
}

func TestSorted_DropsZeroStart(t *testing.T) {
	h := History{entry("created", at(0)), {Status: "broken"}}
	if got := len(Sorted(h)); got != 1 {
		t.Errorf("Sorted() len = %d, want 1", got)
	}
}

func TestSorted_DoesNotMutateInput(t *testing.T) {
	h := History{
		entry("b", at(time.Hour)),
		entry("a", at(0)),
	}
	Sorted(h)
	if h[0].Status != "b" {
		t.Errorf("Sorted() mutated input, first = %q, want %q", h[0].Status, "b")
	}
}

func TestFilterNoise(t *testing.T) {
	tests := []struct {
		name string
		h    History
		min  time.Duration
		want []string
	}{
		{
			name: "drops short interior entry",
			h: History{
				entry("created", at(0)),
				entry("accidental_done", at(24 * time.Hour)),
				entry("in_progress", at(24*time.Hour + 2*time.Minute)),
				entry("done", at(48 * time.Hour)),
			},
			min:  5 * time.Minute,
			want: []string{"created", "in_progress", "done"},
		},
		{
			name: "keeps short first and last entries",
			h: History{
				entry("created", at(0)),
				entry("in_progress", at(10 * time.Second)),
				entry("done", at(20 * time.Second)),
			},
			min:  5 * time.Minute,
			want: []string{"created", "done"},
		},
		{
			name: "collapses duplicates exposed by a drop",
			h: History{
				entry("created", at(0)),
				entry("in_progress", at(24 * time.Hour)),
				entry("done", at(48 * time.Hour)),
				entry("in_progress", at(48*time.Hour + time.Minute)),
				entry("done", at(72 * time.Hour)),
			},
			min:  5 * time.Minute,
			want: []string{"created", "in_progress", "done"},
		},
		{
			name: "disabled threshold keeps brief entries",
			h: History{
				entry("created", at(0)),
				entry("blip", at(time.Second)),
				entry("done", at(2 * time.Second)),
			},
			min:  0,
			want: []string{"created", "blip", "done"},
		},
		{
			name: "disabled threshold still sorts",
			h: History{
				entry("done", at(48 * time.Hour)),
				entry("created", at(0)),
				entry("in_progress", at(24 * time.Hour)),
			},
			min:  0,
			want: []string{"created", "in_progress", "done"},
		},
		{
			name: "two-entry run collapses",
			h: History{
				entry("in_progress", at(0)),
				entry("in_progress", at(24 * time.Hour)),
			},
			min:  5 * time.Minute,
			want: []string{"in_progress"},
		},
		{
			name: "empty input",
			h:    History{},
			min:  5 * time.Minute,
			want: []string{},
		},
		{
			name: "single entry unchanged",
			h:    History{entry("created", at(0))},
			min:  5 * time.Minute,
			want: []string{"created"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := statuses(FilterNoise(tt.h, tt.min))
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterNoise() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFilterNoise_CollapsedRunKeepsOpenTail(t *testing.T) {
	h := History{
		entry("created", at(0)),
		{Status: "done", Start: at(24 * time.Hour), End: at(24*time.Hour + time.Minute)},
		entry("in_progress", at(24*time.Hour + time.Minute)),
		entry("in_progress", at(48 * time.Hour)), // open
	}
	got := FilterNoise(h, 5*time.Minute)
	last, ok := got.Current()
	if !ok {
		t.Fatal("FilterNoise() returned empty history")
	}
	if last.Status != "in_progress" || !last.Open() {
		t.Errorf("FilterNoise() tail = %q open=%v, want in_progress open", last.Status, last.Open())
	}
	if !last.Start.Equal(at(24*time.Hour + time.Minute)) {
		t.Errorf("FilterNoise() run start = %v, want %v", last.Start, at(24*time.Hour+time.Minute))
	}
}

func TestFilterNoise_Idempotent(t *testing.T) {
	histories := []History{
		{},
		{entry("created", at(0))},
		{
			entry("created", at(0)),
			entry("a", at(time.Minute)),
			entry("b", at(2 * time.Minute)),
			entry("a", at(3 * time.Minute)),
			entry("done", at(24 * time.Hour)),
		},
		{
			entry("created", at(0)),
			entry("in_progress", at(24 * time.Hour)),
			entry("done", at(24*time.Hour + time.Second)),
			entry("in_progress", at(24*time.Hour + 2*time.Second)),
			entry("done", at(48 * time.Hour)),
		},
	}
	for _, h := range histories {
		once := FilterNoise(h, 5*time.Minute)
		twice := FilterNoise(once, 5*time.Minute)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("FilterNoise() not idempotent: first %v, second %v", statuses(once), statuses(twice))
		}
	}
}

func TestAsOf(t *testing.T) {
	h := History{
		entry("created", at(0)),
		{Status: "in_progress", Start: at(24 * time.Hour), End: at(96 * time.Hour)},
		entry("done", at(96 * time.Hour)),
	}

	t.Run("drops future entries", func(t *testing.T) {
		got := AsOf(h, at(48*time.Hour))
		want := []string{"created", "in_progress"}
		if !reflect.DeepEqual(statuses(got), want) {
			t.Errorf("AsOf() = %v, want %v", statuses(got), want)
		}
	})

	t.Run("reopens interval ending beyond the date", func(t *testing.T) {
		got := AsOf(h, at(48*time.Hour))
		if !got[1].Open() {
			t.Errorf("AsOf() in_progress end = %v, want open", got[1].End)
		}
	})

	t.Run("entry starting exactly at the date is kept", func(t *testing.T) {
		got := AsOf(h, at(96*time.Hour))
		if len(got) != 3 {
			t.Fatalf("AsOf() len = %d, want 3", len(got))
		}
	})

	t.Run("entry ending exactly at the date keeps its end", func(t *testing.T) {
		got := AsOf(h, at(96*time.Hour))
		if got[1].Open() {
			t.Error("AsOf() truncated an end that equals the as-of date")
		}
	})

	t.Run("source history untouched", func(t *testing.T) {
		AsOf(h, at(48*time.Hour))
		if h[1].End.IsZero() {
			t.Error("AsOf() mutated the source history")
		}
	})
}

func TestResolvedDuration(t *testing.T) {
	h := History{
		entry("created", at(0)),
		{Status: "test", Start: at(24 * time.Hour), End: at(30 * time.Hour)},
	}

	if d, ok := ResolvedDuration(h, 0); !ok || d != 24*time.Hour {
		t.Errorf("ResolvedDuration(0) = %v, %v; want 24h, true", d, ok)
	}
	if d, ok := ResolvedDuration(h, 1); !ok || d != 6*time.Hour {
		t.Errorf("ResolvedDuration(1) = %v, %v; want 6h, true", d, ok)
	}
	open := History{entry("in_progress", at(0))}
	if _, ok := ResolvedDuration(open, 0); ok {
		t.Error("ResolvedDuration() resolved an open tail entry")
	}
	if _, ok := ResolvedDuration(h, 5); ok {
		t.Error("ResolvedDuration() resolved an out-of-range index")
	}
}
