package metrics

import (
	"time"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain/history"
)

// DevelopmentLeadTime measures the calendar days from the first substantial
// work-started entry to the end of development, with no pause exclusion.
//
// The anchor is the earliest closed work-started entry lasting at least
// MinDuration; with none, a still-open work-started entry anchors instead.
// The end marker is, in order of preference: the latest qualifying external
// test entry after the anchor, the first entry in a status configured as
// occurring after external test, and, only when the anchor is still open,
// the asOf moment itself. asOf is the caller's observation time (a past
// report date or "now"); with a zero asOf the open-anchor fallback cannot
// resolve and the metric is unavailable.
func (c *Calculator) DevelopmentLeadTime(h history.History, asOf time.Time) MetricResult {
	if c.cfg.WorkStartedStatus == "" {
		return Unavailable()
	}
	s := c.prepare(h, asOf)

	anchor := -1
	anchorOpen := false
	for i, e := range s {
		if e.Status != c.cfg.WorkStartedStatus {
			continue
		}
		d, closed := history.ResolvedDuration(s, i)
		if closed && d >= c.cfg.MinDuration {
			anchor = i
			break
		}
		if !closed && anchor < 0 {
			anchor = i
			anchorOpen = true
		}
	}
	if anchor < 0 {
		return Unavailable()
	}

	if end, ok := c.devEndMarker(s, anchor); ok {
		return Days(wholeDays(s[anchor].Start, end))
	}
	if anchorOpen && !asOf.IsZero() {
		return Days(wholeDays(s[anchor].Start, asOf.UTC()))
	}
	return Unavailable()
}

// devEndMarker finds the development end moment after the anchor: the latest
// qualifying external-test entry, then the first qualifying entry in an
// after-external-test status.
func (c *Calculator) devEndMarker(s history.History, anchor int) (time.Time, bool) {
	latest := -1
	for i := anchor + 1; i < len(s); i++ {
		if s[i].Status != c.cfg.ExternalTestStatus || !c.qualifies(s, i) {
			continue
		}
		if latest < 0 || s[i].Start.After(s[latest].Start) {
			latest = i
		}
	}
	if latest >= 0 {
		return s[latest].Start, true
	}
	for i := anchor + 1; i < len(s); i++ {
		if c.cfg.occursAfterExternalTest(s[i].Status) && c.qualifies(s, i) {
			return s[i].Start, true
		}
	}
	return time.Time{}, false
}
