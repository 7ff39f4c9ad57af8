package metrics

import (
	"time"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain/history"
)

// TimeToDelivery measures the effective days from the start moment to the
// first time the item reached the ready status, excluding pause time. A
// non-zero asOf reconstructs the history as observed at that moment first.
func (c *Calculator) TimeToDelivery(h history.History, asOf time.Time) MetricResult {
	if c.cfg.ReadyStatus == "" {
		return Unavailable()
	}
	s := c.prepare(h, asOf)
	for _, e := range s {
		if e.Status == c.cfg.ReadyStatus {
			return c.elapsedMinusPause(s, e.Start)
		}
	}
	return Unavailable()
}

// TimeToMarket measures the effective days from the start moment to the
// stable terminal (done-like) entry, excluding pause time. Accidental
// completions that bounced back to work do not count.
//
// An item that is still in flight (open tail, no done-like entry) gets a
// provisional value measured to the asOf moment, so the metric grows
// monotonically as the observation date advances.
func (c *Calculator) TimeToMarket(h history.History, asOf time.Time) MetricResult {
	s := c.prepare(h, asOf)
	res := c.terminal.Resolve(s)
	if res.Found {
		return c.elapsedMinusPause(s, res.Entry.Start)
	}
	if !asOf.IsZero() && openTail(s) {
		return c.elapsedMinusPause(s, asOf.UTC())
	}
	return Unavailable()
}

// openTail reports whether the history ends in an open interval.
func openTail(s history.History) bool {
	last, ok := s.Current()
	return ok && last.Open()
}
