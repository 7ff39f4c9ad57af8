package metrics

import (
	"time"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain/history"
)

// StatusDuration sums the whole days the item spent in one status across the
// noise-filtered history. Consecutive occupancies of the status count as one
// run ending at the next differing status; an ongoing run at the tail has no
// resolved duration and contributes zero. Pause time is not excluded.
func (c *Calculator) StatusDuration(h history.History, status string, asOf time.Time) int {
	if status == "" {
		return 0
	}
	s := c.prepare(h, asOf)
	total := 0
	for i := 0; i < len(s); {
		if s[i].Status != status {
			i++
			continue
		}
		j := i + 1
		for j < len(s) && s[j].Status == status {
			j++
		}
		if j < len(s) {
			total += wholeDays(s[i].Start, s[j].Start)
		}
		i = j
	}
	return total
}

// PauseTotal exposes raw pause accounting over the unfiltered history for
// per-item breakdown reports. Delivery metrics filter noise before pause
// accounting; raw reporting deliberately does not.
func (c *Calculator) PauseTotal(h history.History) int {
	return c.pause.Total(h)
}

// PauseTotalUpTo is PauseTotal clipped to a cutoff, on the noise-filtered
// history, matching what TTD and TTM subtract.
func (c *Calculator) PauseTotalUpTo(h history.History, cutoff time.Time) int {
	return c.pause.TotalUpTo(history.FilterNoise(h, c.cfg.MinDuration), cutoff)
}
