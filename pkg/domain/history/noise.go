package history

import "time"

// FilterNoise removes interior entries whose occupancy lasted less than
// minDuration, treating them as accidental transitions (misclicks, bounced
// workflow automations). The first entry (item creation) and the last entry
// (current or terminal state) are always retained regardless of duration.
//
// An entry's occupancy is measured to the next entry's start. After dropping,
// consecutive entries that share a status are collapsed into one run keeping
// the earliest start; a collapsed run adopts the end of its last member so an
// open tail stays open.
//
// A non-positive minDuration disables the duration check; the result is
// still sorted, UTC-normalized and run-collapsed. The filter is single-pass
// and idempotent: surviving gaps only grow when a neighbor is removed.
func FilterNoise(h History, minDuration time.Duration) History {
	s := Sorted(h)
	if minDuration <= 0 || len(s) <= 2 {
		return collapseRuns(s)
	}

	kept := make(History, 0, len(s))
	kept = append(kept, s[0])
	for i := 1; i < len(s)-1; i++ {
		if s[i+1].Start.Sub(s[i].Start) < minDuration {
			continue
		}
		kept = append(kept, s[i])
	}
	kept = append(kept, s[len(s)-1])

	return collapseRuns(kept)
}

// collapseRuns merges adjacent entries with identical statuses. The merged
// run keeps the first member's start and display label and the last member's
// end.
func collapseRuns(h History) History {
	out := make(History, 0, len(h))
	for _, e := range h {
		if len(out) > 0 && out[len(out)-1].Status == e.Status {
			out[len(out)-1].End = e.End
			continue
		}
		out = append(out, e)
	}
	return out
}
