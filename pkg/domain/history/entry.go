// Package history models the status history of a work item and the pure
// transforms (chronological normalization, noise filtering, as-of-date
// reconstruction) that every metric calculation builds on.
package history

import "time"

// Entry is one contiguous occupancy of a status by a work item.
//
// Start is always populated. A zero End marks an open interval: the item is
// still in this status as of the observation time. The effective duration of
// an entry is derived from the next entry's start, not from End; End is mainly
// a closedness signal.
type Entry struct {
	Status        string    // stable identifier, used for all matching
	DisplayStatus string    // human label, carried through untouched
	Start         time.Time
	End           time.Time // zero means open
}

// Open returns true if the entry has no recorded end.
func (e Entry) Open() bool {
	return e.End.IsZero()
}

// History is the chronological list of status occupancies for one work item.
// All transforms in this package return new slices; a History is never
// mutated in place, so callers may reuse one across calculator calls.
type History []Entry

// Empty returns true if the history contains no entries.
func (h History) Empty() bool {
	return len(h) == 0
}

// Current returns the last entry of an already sorted history.
func (h History) Current() (Entry, bool) {
	if len(h) == 0 {
		return Entry{}, false
	}
	return h[len(h)-1], true
}

// resolvedDuration returns the effective duration of the entry at index i in a
// sorted history: the gap to the next entry's start, or End-Start for a closed
// last entry. ok is false when the entry is open with no successor.
func resolvedDuration(h History, i int) (time.Duration, bool) {
	if i+1 < len(h) {
		return h[i+1].Start.Sub(h[i].Start), true
	}
	if !h[i].End.IsZero() {
		return h[i].End.Sub(h[i].Start), true
	}
	return 0, false
}

// ResolvedDuration is the exported form of resolvedDuration for callers that
// apply status-specific duration thresholds (the Tail and DevLT calculators).
func ResolvedDuration(h History, i int) (time.Duration, bool) {
	if i < 0 || i >= len(h) {
		return 0, false
	}
	return resolvedDuration(h, i)
}
