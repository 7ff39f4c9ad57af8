package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/flowmetrics/internal/infrastructure/watch"
	"github.com/felixgeelhaar/flowmetrics/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/flowmetrics/pkg/application"
	"github.com/felixgeelhaar/flowmetrics/pkg/domain/analytics"
)

var (
	reportGroupBy           string
	reportQuarter           string
	reportAsOf              string
	reportIncludeUnfinished bool
	reportJSON              bool
	reportWatch             bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute grouped delivery metrics",
	Long: `Compute delivery metrics for all work items, aggregated per author
or per team.

Examples:
  flowmetrics report --group-by team
  flowmetrics report --group-by author --quarter Q1
  flowmetrics report --as-of 2026-03-31 --include-unfinished
  flowmetrics report --watch`,
	RunE: runReportCmd,
}

func init() {
	reportCmd.Flags().StringVarP(&reportGroupBy, "group-by", "g", "team", "grouping dimension: author or team")
	reportCmd.Flags().StringVarP(&reportQuarter, "quarter", "q", "", "named quarter from the configuration")
	reportCmd.Flags().StringVar(&reportAsOf, "as-of", "", "compute the report as of this date (YYYY-MM-DD)")
	reportCmd.Flags().BoolVar(&reportIncludeUnfinished, "include-unfinished", false, "include items that are not yet done")
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "output in JSON format")
	reportCmd.Flags().BoolVarP(&reportWatch, "watch", "w", false, "re-run on snapshot file changes")
	RootCmd.AddCommand(reportCmd)
}

func runReportCmd(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	groupBy, err := parseGroupBy(reportGroupBy)
	if err != nil {
		return err
	}

	period, err := resolvePeriod(ws)
	if err != nil {
		return err
	}

	run := func(ctx context.Context) error {
		report, err := ws.Reports.Generate(ctx, groupBy, period, reportIncludeUnfinished)
		if err != nil {
			return err
		}
		return renderReport(cmd, report)
	}

	if !reportWatch {
		return run(cmd.Context())
	}
	return watchAndRun(cmd.Context(), ws, run)
}

func parseGroupBy(s string) (application.GroupBy, error) {
	switch application.GroupBy(s) {
	case application.GroupByAuthor:
		return application.GroupByAuthor, nil
	case application.GroupByTeam:
		return application.GroupByTeam, nil
	default:
		return "", fmt.Errorf("unknown group-by %q: use author or team", s)
	}
}

func resolvePeriod(ws *wiring.Workspace) (application.Period, error) {
	if reportQuarter != "" && reportAsOf != "" {
		return application.Period{}, fmt.Errorf("--quarter and --as-of are mutually exclusive")
	}
	if reportQuarter != "" {
		period, ok := ws.Config.Quarter(reportQuarter)
		if !ok {
			return application.Period{}, fmt.Errorf("quarter %q is not configured", reportQuarter)
		}
		return period, nil
	}
	if reportAsOf != "" {
		asOf, err := time.Parse("2006-01-02", reportAsOf)
		if err != nil {
			return application.Period{}, fmt.Errorf("parse --as-of: %w", err)
		}
		// End is exclusive; include the named day fully.
		return application.Period{Name: "as of " + reportAsOf, End: asOf.AddDate(0, 0, 1)}, nil
	}
	return application.Period{}, nil
}

// watchAndRun runs once, then re-runs on every snapshot change until
// interrupted. Only the file tracker supports watching.
func watchAndRun(ctx context.Context, ws *wiring.Workspace, run func(context.Context) error) error {
	if ws.Config.Tracker.Kind != "file" {
		return fmt.Errorf("--watch requires the file tracker")
	}
	if err := run(ctx); err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	watcher := watch.NewSnapshotWatcher(ws.Config.Tracker.Snapshot, 0, func() {
		if err := run(ctx); err != nil {
			log.Error().Err(err).Msg("Report run failed")
		}
	})
	if err := watcher.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

type reportJSONOutput struct {
	ID          string            `json:"id"`
	GeneratedAt time.Time         `json:"generated_at"`
	Period      string            `json:"period,omitempty"`
	GroupBy     string            `json:"group_by"`
	Groups      []groupJSONOutput `json:"groups"`
}

type groupJSONOutput struct {
	Group string            `json:"group"`
	Items int               `json:"items"`
	TTD   metricJSONOutput  `json:"ttd"`
	TTM   metricJSONOutput  `json:"ttm"`
	Tail  metricJSONOutput  `json:"tail"`
	DevLT metricJSONOutput  `json:"dev_lead_time"`
	Pause *metricJSONOutput `json:"pause,omitempty"`
}

type metricJSONOutput struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	P85   float64 `json:"p85"`
}

func renderReport(cmd *cobra.Command, report *application.Report) error {
	if reportJSON {
		return outputReportJSON(cmd, report)
	}
	return outputReportText(cmd, report)
}

func outputReportJSON(cmd *cobra.Command, report *application.Report) error {
	out := reportJSONOutput{
		ID:          report.ID,
		GeneratedAt: report.GeneratedAt,
		Period:      report.Period.Name,
		GroupBy:     string(report.GroupBy),
	}
	for _, g := range report.Groups {
		jg := groupJSONOutput{
			Group: g.Group,
			Items: g.Items,
			TTD:   metricJSON(g.TTD.Distribution),
			TTM:   metricJSON(g.TTM.Distribution),
			Tail:  metricJSON(g.Tail.Distribution),
			DevLT: metricJSON(g.DevLT.Distribution),
		}
		if g.TTM.Pause != nil {
			p := metricJSON(*g.TTM.Pause)
			jg.Pause = &p
		}
		out.Groups = append(out.Groups, jg)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	cmd.Println(string(data))
	return nil
}

func metricJSON(d analytics.Distribution) metricJSONOutput {
	return metricJSONOutput{Count: d.Count, Mean: d.Mean, P85: d.P85}
}

func outputReportText(cmd *cobra.Command, report *application.Report) error {
	if report.Period.Name != "" {
		cmd.Printf("Report %s (%s, by %s)\n\n", report.ID, report.Period.Name, report.GroupBy)
	} else {
		cmd.Printf("Report %s (by %s)\n\n", report.ID, report.GroupBy)
	}
	if len(report.Groups) == 0 {
		cmd.Println("No finished work items in the selected period.")
		return nil
	}
	for _, g := range report.Groups {
		cmd.Printf("%s (%d items)\n", g.Group, g.Items)
		printStat(cmd, "TTD", g.TTD.Distribution)
		printStat(cmd, "TTM", g.TTM.Distribution)
		printStat(cmd, "Tail", g.Tail.Distribution)
		printStat(cmd, "DevLT", g.DevLT.Distribution)
		if g.TTM.Pause != nil && !g.TTM.Pause.Empty() {
			printStat(cmd, "Pause", *g.TTM.Pause)
		}
		cmd.Println()
	}
	return nil
}

func printStat(cmd *cobra.Command, name string, d analytics.Distribution) {
	if d.Empty() {
		cmd.Printf("  %-6s n/a\n", name)
		return
	}
	cmd.Printf("  %-6s mean %.1fd  p85 %.1fd  (n=%d)\n", name, d.Mean, d.P85, d.Count)
}
