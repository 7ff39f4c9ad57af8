package metrics

import (
	"time"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain/history"
)

// Resolution is the outcome of resolving the stable terminal entry of a
// history. Stable is false when every done-like occurrence was eventually
// followed by a return to active work and the resolver fell back to the
// first occurrence.
type Resolution struct {
	Entry  history.Entry
	Stable bool
	Found  bool
}

// TerminalResolver selects, among all done-like occurrences in a history, the
// one that represents genuine completion. An occurrence is stable when no
// later entry returns to active work: everything after it is either done-like
// or the pause status. Accidental completions that bounce back to work are
// skipped.
type TerminalResolver struct {
	done        TargetStatusSet
	pauseStatus string
	minDuration time.Duration
}

// NewTerminalResolver builds a resolver over the given done-like set. The
// noise threshold is applied before resolving; this resolver exists precisely
// to survive noisy bounce-backs.
func NewTerminalResolver(done TargetStatusSet, pauseStatus string, minDuration time.Duration) TerminalResolver {
	return TerminalResolver{done: done, pauseStatus: pauseStatus, minDuration: minDuration}
}

// Resolve returns the stable terminal entry of the history. The scan runs
// from the most recent candidate backwards; the first stable one wins. With
// no stable candidate the first occurrence is the conservative fallback.
func (r TerminalResolver) Resolve(h history.History) Resolution {
	if r.done.Empty() {
		return Resolution{}
	}
	s := history.FilterNoise(h, r.minDuration)

	var candidates []int
	for i, e := range s {
		if r.done.Contains(e.Status) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return Resolution{}
	}
	if len(candidates) == 1 {
		return Resolution{Entry: s[candidates[0]], Stable: true, Found: true}
	}

	for c := len(candidates) - 1; c >= 0; c-- {
		if r.stableAt(s, candidates[c]) {
			return Resolution{Entry: s[candidates[c]], Stable: true, Found: true}
		}
	}
	return Resolution{Entry: s[candidates[0]], Stable: false, Found: true}
}

// stableAt reports whether every entry after index i stays in the done set or
// the pause status.
func (r TerminalResolver) stableAt(s history.History, i int) bool {
	for j := i + 1; j < len(s); j++ {
		if r.done.Contains(s[j].Status) || s[j].Status == r.pauseStatus {
			continue
		}
		return false
	}
	return true
}
