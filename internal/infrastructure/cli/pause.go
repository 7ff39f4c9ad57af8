package cli

import (
	"sort"

	"github.com/spf13/cobra"
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Show total paused days per work item",
	Long: `Show the whole days each work item spent paused, summed over all
pause periods in its raw history.`,
	RunE: runPauseCmd,
}

func init() {
	RootCmd.AddCommand(pauseCmd)
}

func runPauseCmd(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	items, err := ws.Repo.ListItems(cmd.Context())
	if err != nil {
		return err
	}

	type row struct {
		key  string
		days int
	}
	rows := make([]row, 0, len(items))
	for _, item := range items {
		rows = append(rows, row{key: item.Key.String(), days: ws.Calc.PauseTotal(item.History)})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].key < rows[j].key })

	for _, r := range rows {
		cmd.Printf("%-24s %dd\n", r.key, r.days)
	}
	return nil
}
