// Package analytics aggregates per-item metric values into group-level
// statistics for reporting.
package analytics

import (
	"math"
	"sort"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain/metrics"
)

// Distribution summarizes a list of observed day counts. Mean and P85 are
// meaningful only when Count > 0.
type Distribution struct {
	Values []int   // sorted ascending
	Count  int
	Mean   float64
	P85    float64 // 85th percentile, linear interpolation
}

// Empty reports whether the distribution has no observations.
func (d Distribution) Empty() bool {
	return d.Count == 0
}

// Summarize computes the distribution of the given values. The input is
// copied, never reordered in place.
func Summarize(values []int) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)

	sum := 0
	for _, v := range sorted {
		sum += v
	}
	return Distribution{
		Values: sorted,
		Count:  len(sorted),
		Mean:   float64(sum) / float64(len(sorted)),
		P85:    percentile(sorted, 0.85),
	}
}

// percentile interpolates linearly between the order statistics bracketing
// rank p*(N-1). The input must be sorted.
func percentile(sorted []int, p float64) float64 {
	if len(sorted) == 1 {
		return float64(sorted[0])
	}
	rank := p * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := lo + 1
	if hi >= len(sorted) {
		return float64(sorted[len(sorted)-1])
	}
	frac := rank - float64(lo)
	return float64(sorted[lo]) + frac*float64(sorted[hi]-sorted[lo])
}

// GroupStatistics is the aggregate of one metric over one report group. The
// pause distribution, when present, is aggregated independently of whether
// the paired primary values were available.
type GroupStatistics struct {
	Distribution
	Pause *Distribution
}

// Aggregate reduces per-item metric results to group statistics, keeping only
// the available ones. pauseDays, when non-nil, is summarized as a parallel
// distribution.
func Aggregate(results []metrics.MetricResult, pauseDays []int) GroupStatistics {
	values := make([]int, 0, len(results))
	for _, r := range results {
		if r.Available() {
			values = append(values, r.Value())
		}
	}
	g := GroupStatistics{Distribution: Summarize(values)}
	if pauseDays != nil {
		p := Summarize(pauseDays)
		g.Pause = &p
	}
	return g
}
