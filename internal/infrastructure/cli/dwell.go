package cli

import (
	"sort"

	"github.com/spf13/cobra"
)

var dwellCmd = &cobra.Command{
	Use:   "dwell <status>",
	Short: "Show how long each work item spent in a status",
	Long: `Show the whole days each work item spent in the given status,
summed over all visits after noise filtering.

Example:
  flowmetrics dwell in_progress`,
	Args: cobra.ExactArgs(1),
	RunE: runDwellCmd,
}

func init() {
	RootCmd.AddCommand(dwellCmd)
}

func runDwellCmd(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	durations, err := ws.Reports.StatusDurations(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(durations) == 0 {
		cmd.Printf("No work item ever visited %q.\n", args[0])
		return nil
	}

	keys := make([]string, 0, len(durations))
	for key := range durations {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		cmd.Printf("%-24s %dd\n", key, durations[key])
	}
	return nil
}
