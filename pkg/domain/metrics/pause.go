package metrics

import (
	"time"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain/history"
)

// PauseCalculator sums the whole days an item spent in the pause status.
// Consecutive pause entries count as one interval; the interval ends at the
// first following entry with a different status.
type PauseCalculator struct {
	pauseStatus string
}

// NewPauseCalculator returns a calculator for the given pause status
// identifier.
func NewPauseCalculator(pauseStatus string) PauseCalculator {
	return PauseCalculator{pauseStatus: pauseStatus}
}

// pauseInterval is one resolved stretch of pause time. resolved is false when
// the item is still paused at the end of the history.
type pauseInterval struct {
	start    time.Time
	end      time.Time
	resolved bool
}

// intervals scans a history for pause stretches. The input is sorted here so
// callers may pass raw histories.
func (c PauseCalculator) intervals(h history.History) []pauseInterval {
	if c.pauseStatus == "" {
		return nil
	}
	s := history.Sorted(h)
	var out []pauseInterval
	for i := 0; i < len(s); {
		if s[i].Status != c.pauseStatus {
			i++
			continue
		}
		j := i + 1
		for j < len(s) && s[j].Status == c.pauseStatus {
			j++
		}
		iv := pauseInterval{start: s[i].Start}
		if j < len(s) {
			iv.end = s[j].Start
			iv.resolved = true
		}
		out = append(out, iv)
		i = j
	}
	return out
}

// Total sums resolved pause time over the whole history. An ongoing pause at
// the tail has no resolved duration and contributes zero.
func (c PauseCalculator) Total(h history.History) int {
	total := 0
	for _, iv := range c.intervals(h) {
		if !iv.resolved {
			continue
		}
		total += wholeDays(iv.start, iv.end)
	}
	return total
}

// TotalUpTo sums pause time with every interval clipped to the cutoff. A
// pause that is unresolved, or resolves only after the cutoff, contributes
// the span from its start to the cutoff.
func (c PauseCalculator) TotalUpTo(h history.History, cutoff time.Time) int {
	cutoff = cutoff.UTC()
	total := 0
	for _, iv := range c.intervals(h) {
		if iv.resolved && !iv.end.After(cutoff) {
			total += wholeDays(iv.start, iv.end)
			continue
		}
		total += wholeDays(iv.start, cutoff)
	}
	return total
}

// TotalBetween sums the overlap of each pause interval with [from, to). An
// unresolved pause extends to the window end.
func (c PauseCalculator) TotalBetween(h history.History, from, to time.Time) int {
	from, to = from.UTC(), to.UTC()
	total := 0
	for _, iv := range c.intervals(h) {
		end := to
		if iv.resolved && iv.end.Before(to) {
			end = iv.end
		}
		start := iv.start
		if start.Before(from) {
			start = from
		}
		total += wholeDays(start, end)
	}
	return total
}
