package application

import (
	"context"
	"runtime"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/felixgeelhaar/flowmetrics/pkg/domain"
	"github.com/felixgeelhaar/flowmetrics/pkg/domain/analytics"
	"github.com/felixgeelhaar/flowmetrics/pkg/domain/metrics"
)

// GroupBy selects the report grouping dimension.
type GroupBy string

const (
	GroupByAuthor GroupBy = "author"
	GroupByTeam   GroupBy = "team"
)

// unassignedGroup collects items with an empty grouping value.
const unassignedGroup = "unassigned"

// Period is one reporting window, typically a quarter. End is exclusive and
// doubles as the as-of date for items still unfinished at that moment.
type Period struct {
	Name  string
	Start time.Time
	End   time.Time
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}

// Contains reports whether t falls inside [Start, End).
func (p Period) Contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

// ItemMetrics is the full metric breakdown of one work item.
type ItemMetrics struct {
	Key   string
	Group string

	TTD   metrics.MetricResult
	TTM   metrics.MetricResult
	Tail  metrics.MetricResult
	DevLT metrics.MetricResult

	// PauseDays is the raw pause total over the unfiltered history.
	PauseDays int
}

// GroupReport aggregates one group's items across all metrics. The pause
// distribution rides along with TTM, mirroring how pause time is reported
// next to delivery figures.
type GroupReport struct {
	Group string
	Items int

	TTD   analytics.GroupStatistics
	TTM   analytics.GroupStatistics
	Tail  analytics.GroupStatistics
	DevLT analytics.GroupStatistics
}

// Report is one generated metrics report.
type Report struct {
	ID          string
	GeneratedAt time.Time
	Period      Period
	GroupBy     GroupBy
	Groups      []GroupReport
}

// ReportService computes delivery-metric reports over a history repository.
// Items are independent, so they are processed in parallel; only the final
// per-group reduce runs serially.
type ReportService struct {
	repo    domain.HistoryRepository
	cfg     metrics.Config
	calc    *metrics.Calculator
	workers int
	now     func() time.Time
}

// ServiceOption customizes a ReportService.
type ServiceOption func(*ReportService)

// WithWorkers bounds the number of concurrent item computations.
func WithWorkers(n int) ServiceOption {
	return func(s *ReportService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithClock overrides the service's notion of now. The engine itself never
// reads the clock; this is the orchestration boundary where "now" enters.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *ReportService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewReportService creates a report service.
func NewReportService(repo domain.HistoryRepository, cfg metrics.Config, opts ...ServiceOption) *ReportService {
	s := &ReportService{
		repo:    repo,
		cfg:     cfg,
		calc:    metrics.NewCalculator(cfg),
		workers: runtime.NumCPU(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate computes a report for the given grouping and period. A zero
// period covers everything, observed at now. With a period set, finished
// items are included when their stable completion falls inside the window;
// unfinished items are included only when includeUnfinished is set and are
// measured as of the period end.
func (s *ReportService) Generate(ctx context.Context, groupBy GroupBy, period Period, includeUnfinished bool) (*Report, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}

	asOf := s.now().UTC()
	if !period.IsZero() {
		asOf = period.End.UTC()
	}

	selected := s.selectItems(items, period, includeUnfinished)

	computed := make([]ItemMetrics, len(selected))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, item := range selected {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			computed[i] = s.computeItem(item, groupBy, asOf)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Report{
		ID:          uuid.NewString(),
		GeneratedAt: s.now().UTC(),
		Period:      period,
		GroupBy:     groupBy,
		Groups:      reduceGroups(computed),
	}, nil
}

// ItemBreakdown computes the per-item metric breakdown at the given
// observation moment.
func (s *ReportService) ItemBreakdown(item domain.WorkItem, groupBy GroupBy, asOf time.Time) ItemMetrics {
	if asOf.IsZero() {
		asOf = s.now().UTC()
	}
	return s.computeItem(item, groupBy, asOf)
}

// StatusDurations sums per-item dwell time in one status across all items of
// the repository.
func (s *ReportService) StatusDurations(ctx context.Context, status string) (map[string]int, error) {
	items, err := s.repo.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(items))
	for _, item := range items {
		out[item.Key.String()] = s.calc.StatusDuration(item.History, status, time.Time{})
	}
	return out, nil
}

// selectItems applies the period window. Completion is judged by the stable
// terminal resolution over the raw history.
func (s *ReportService) selectItems(items []domain.WorkItem, period Period, includeUnfinished bool) []domain.WorkItem {
	if period.IsZero() {
		return items
	}
	resolver := metrics.NewTerminalResolver(s.cfg.DoneStatuses, s.cfg.PauseStatus, s.cfg.MinDuration)
	out := make([]domain.WorkItem, 0, len(items))
	for _, item := range items {
		res := resolver.Resolve(item.History)
		if res.Found {
			if period.Contains(res.Entry.Start) {
				out = append(out, item)
			}
			continue
		}
		if includeUnfinished && item.CreatedAt.Before(period.End) {
			out = append(out, item)
		}
	}
	return out
}

func (s *ReportService) computeItem(item domain.WorkItem, groupBy GroupBy, asOf time.Time) ItemMetrics {
	group := item.Author
	if groupBy == GroupByTeam {
		group = item.Team
	}
	if group == "" {
		group = unassignedGroup
	}
	return ItemMetrics{
		Key:       item.Key.String(),
		Group:     group,
		TTD:       s.calc.TimeToDelivery(item.History, asOf),
		TTM:       s.calc.TimeToMarket(item.History, asOf),
		Tail:      s.calc.Tail(item.History, asOf),
		DevLT:     s.calc.DevelopmentLeadTime(item.History, asOf),
		PauseDays: s.calc.PauseTotal(item.History),
	}
}

// reduceGroups is the single serialized merge point of the parallel
// computation.
func reduceGroups(items []ItemMetrics) []GroupReport {
	byGroup := make(map[string][]ItemMetrics)
	for _, m := range items {
		byGroup[m.Group] = append(byGroup[m.Group], m)
	}

	names := make([]string, 0, len(byGroup))
	for name := range byGroup {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]GroupReport, 0, len(names))
	for _, name := range names {
		members := byGroup[name]
		ttd := make([]metrics.MetricResult, len(members))
		ttm := make([]metrics.MetricResult, len(members))
		tail := make([]metrics.MetricResult, len(members))
		devlt := make([]metrics.MetricResult, len(members))
		pause := make([]int, len(members))
		for i, m := range members {
			ttd[i], ttm[i], tail[i], devlt[i] = m.TTD, m.TTM, m.Tail, m.DevLT
			pause[i] = m.PauseDays
		}
		out = append(out, GroupReport{
			Group: name,
			Items: len(members),
			TTD:   analytics.Aggregate(ttd, nil),
			TTM:   analytics.Aggregate(ttm, pause),
			Tail:  analytics.Aggregate(tail, nil),
			DevLT: analytics.Aggregate(devlt, nil),
		})
	}
	return out
}
