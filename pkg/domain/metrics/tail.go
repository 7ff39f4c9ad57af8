package metrics

import (
	"time"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain/history"
)

// Tail measures the days between the last substantial stay in the external
// test status and the first done-like entry after it, minus pause time inside
// that window.
//
// The duration threshold is re-applied to the external-test entries here even
// though the generic noise filter already ran: the generic filter can merge a
// brief excursion with a neighbor instead of dropping it, and a merged blip
// must still not anchor the tail.
func (c *Calculator) Tail(h history.History, asOf time.Time) MetricResult {
	if c.cfg.ExternalTestStatus == "" || c.cfg.DoneStatuses.Empty() {
		return Unavailable()
	}
	s := c.prepare(h, asOf)

	anchor := -1
	for i, e := range s {
		if e.Status != c.cfg.ExternalTestStatus {
			continue
		}
		if !c.qualifies(s, i) {
			continue
		}
		if anchor < 0 || e.Start.After(s[anchor].Start) {
			anchor = i
		}
	}
	if anchor < 0 {
		return Unavailable()
	}

	for j := anchor + 1; j < len(s); j++ {
		if !c.cfg.DoneStatuses.Contains(s[j].Status) {
			continue
		}
		days := wholeDays(s[anchor].Start, s[j].Start) -
			c.pause.TotalBetween(s, s[anchor].Start, s[j].Start)
		return Days(days)
	}
	// Still in flight after external test: provisional value to the
	// observation moment.
	if !asOf.IsZero() && openTail(s) {
		end := asOf.UTC()
		days := wholeDays(s[anchor].Start, end) -
			c.pause.TotalBetween(s, s[anchor].Start, end)
		return Days(days)
	}
	return Unavailable()
}

// qualifies applies the per-status duration threshold: closed entries must
// have stayed at least MinDuration, an open tail entry always qualifies.
func (c *Calculator) qualifies(s history.History, i int) bool {
	d, ok := history.ResolvedDuration(s, i)
	if !ok {
		return true
	}
	return d >= c.cfg.MinDuration
}
