// Package metrics turns a work item's status history into delivery-performance
// metrics: Time-To-Delivery, Time-To-Market, Tail, Development Lead Time and
// generic per-status dwell time, with pause-time accounting and stable
// terminal-state resolution.
//
// Every function here is pure: histories are never mutated, the wall clock is
// never read, and malformed input degrades to Unavailable or zero instead of
// failing.
package metrics

import (
	"fmt"
	"time"
)

// MetricResult is either a non-negative number of whole days or unavailable
// (the target condition never occurred, or the history was empty).
type MetricResult struct {
	days      int
	available bool
}

// Days returns an available result, clamped to be non-negative.
func Days(n int) MetricResult {
	if n < 0 {
		n = 0
	}
	return MetricResult{days: n, available: true}
}

// Unavailable returns the absent result.
func Unavailable() MetricResult {
	return MetricResult{}
}

// Available reports whether the metric could be computed.
func (r MetricResult) Available() bool {
	return r.available
}

// Value returns the number of days; zero when unavailable.
func (r MetricResult) Value() int {
	return r.days
}

// String renders the result for console output.
func (r MetricResult) String() string {
	if !r.available {
		return "n/a"
	}
	return fmt.Sprintf("%dd", r.days)
}

// wholeDays returns the floored number of calendar days between two instants,
// never negative.
func wholeDays(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from) / (24 * time.Hour))
}
