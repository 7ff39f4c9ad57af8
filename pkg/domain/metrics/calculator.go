package metrics

import (
	"time"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain/history"
)

// StartSelector picks the moment a metric's clock starts from a sorted,
// noise-filtered history. ok is false when no start can be established.
type StartSelector func(h history.History) (time.Time, bool)

// CreationStart returns the first chronological entry's start, the default
// strategy for TTD and TTM.
func CreationStart(h history.History) (time.Time, bool) {
	if len(h) == 0 {
		return time.Time{}, false
	}
	return h[0].Start, true
}

// FirstStatusStart returns a selector that starts the clock at the first
// occurrence of the given status.
func FirstStatusStart(status string) StartSelector {
	return func(h history.History) (time.Time, bool) {
		for _, e := range h {
			if e.Status == status {
				return e.Start, true
			}
		}
		return time.Time{}, false
	}
}

// Calculator computes the delivery metrics for one work item's history. It is
// stateless and safe for concurrent use across items.
type Calculator struct {
	cfg      Config
	pause    PauseCalculator
	terminal TerminalResolver
	start    StartSelector
}

// Option customizes a Calculator.
type Option func(*Calculator)

// WithStartSelector overrides the default creation-time start strategy.
func WithStartSelector(s StartSelector) Option {
	return func(c *Calculator) {
		if s != nil {
			c.start = s
		}
	}
}

// NewCalculator builds a calculator for the given taxonomy and thresholds.
func NewCalculator(cfg Config, opts ...Option) *Calculator {
	c := &Calculator{
		cfg:      cfg,
		pause:    NewPauseCalculator(cfg.PauseStatus),
		terminal: NewTerminalResolver(cfg.DoneStatuses, cfg.PauseStatus, cfg.MinDuration),
		start:    CreationStart,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// prepare applies the as-of reconstruction (when asOf is non-zero) and the
// noise filter, the common preamble of every calculator.
func (c *Calculator) prepare(h history.History, asOf time.Time) history.History {
	if !asOf.IsZero() {
		h = history.AsOf(h, asOf)
	} else {
		h = history.Sorted(h)
	}
	return history.FilterNoise(h, c.cfg.MinDuration)
}

// elapsedMinusPause is the shared scaffold of TTD and TTM: calendar days from
// the selected start to the target moment, minus pause time accumulated up to
// the target.
func (c *Calculator) elapsedMinusPause(h history.History, target time.Time) MetricResult {
	start, ok := c.start(h)
	if !ok {
		return Unavailable()
	}
	days := wholeDays(start, target) - c.pause.TotalUpTo(h, target)
	return Days(days)
}
