package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/flowmetrics/internal/infrastructure/wiring"
	"github.com/felixgeelhaar/flowmetrics/pkg/application"
	"github.com/felixgeelhaar/flowmetrics/pkg/domain"
)

var itemAsOf string

var itemCmd = &cobra.Command{
	Use:   "item <key>",
	Short: "Show the metric breakdown for a single work item",
	Args:  cobra.ExactArgs(1),
	RunE:  runItemCmd,
}

func init() {
	itemCmd.Flags().StringVar(&itemAsOf, "as-of", "", "compute the breakdown as of this date (YYYY-MM-DD)")
	RootCmd.AddCommand(itemCmd)
}

func runItemCmd(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	var asOf time.Time
	if itemAsOf != "" {
		parsed, err := time.Parse("2006-01-02", itemAsOf)
		if err != nil {
			return fmt.Errorf("parse --as-of: %w", err)
		}
		asOf = parsed.AddDate(0, 0, 1)
	}

	item, err := findItem(cmd, ws.Repo, args[0])
	if err != nil {
		return err
	}

	breakdown := ws.Reports.ItemBreakdown(item, application.GroupByTeam, asOf)
	cmd.Printf("%s  %s\n", item.Key, item.Title)
	if item.Author != "" {
		cmd.Printf("  author %s", item.Author)
		if item.Team != "" {
			cmd.Printf("  team %s", item.Team)
		}
		cmd.Println()
	}
	cmd.Printf("  TTD    %s\n", breakdown.TTD)
	cmd.Printf("  TTM    %s\n", breakdown.TTM)
	cmd.Printf("  Tail   %s\n", breakdown.Tail)
	cmd.Printf("  DevLT  %s\n", breakdown.DevLT)
	cmd.Printf("  Pause  %dd\n", breakdown.PauseDays)

	printDwellTimes(cmd, ws, item, asOf)
	return nil
}

// printDwellTimes lists whole days spent in each status seen in the item's
// history, after noise filtering.
func printDwellTimes(cmd *cobra.Command, ws *wiring.Workspace, item domain.WorkItem, asOf time.Time) {
	seen := map[string]bool{}
	var statuses []string
	for _, e := range item.History {
		if !seen[e.Status] {
			seen[e.Status] = true
			statuses = append(statuses, e.Status)
		}
	}
	sort.Strings(statuses)

	if len(statuses) == 0 {
		return
	}
	cmd.Println("  dwell:")
	for _, status := range statuses {
		cmd.Printf("    %-20s %dd\n", status, ws.Calc.StatusDuration(item.History, status, asOf))
	}
}

func findItem(cmd *cobra.Command, repo domain.HistoryRepository, key string) (domain.WorkItem, error) {
	items, err := repo.ListItems(cmd.Context())
	if err != nil {
		return domain.WorkItem{}, err
	}
	for _, item := range items {
		if item.Key.String() == key {
			return item, nil
		}
	}
	return domain.WorkItem{}, fmt.Errorf("work item %q not found", key)
}
