package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check work-item histories against the configured status flow",
	Long: `Replay each work item's status history through the canonical flow
and list transitions that fall outside it, such as reopening from done
or jumping backwards from external test.`,
	RunE: runValidateCmd,
}

func init() {
	RootCmd.AddCommand(validateCmd)
}

func runValidateCmd(cmd *cobra.Command, args []string) error {
	ws, err := loadWorkspace()
	if err != nil {
		return err
	}

	items, err := ws.Repo.ListItems(cmd.Context())
	if err != nil {
		return err
	}

	flagged := 0
	for _, item := range items {
		irregularities, err := ws.Flow.Check(item.History)
		if err != nil {
			return fmt.Errorf("check %s: %w", item.Key, err)
		}
		if len(irregularities) == 0 {
			continue
		}
		flagged++
		cmd.Printf("%s\n", item.Key)
		for _, irr := range irregularities {
			cmd.Printf("  %s\n", irr)
		}
	}

	if flagged == 0 {
		cmd.Printf("All %d work items follow the configured flow.\n", len(items))
		return nil
	}
	return fmt.Errorf("%d of %d work items have irregular transitions", flagged, len(items))
}
