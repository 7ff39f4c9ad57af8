// Package cli implements the flowmetrics command tree.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/flowmetrics/internal/infrastructure/logging"
	"github.com/felixgeelhaar/flowmetrics/internal/infrastructure/wiring"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var (
	configPath string
	verbose    bool
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "flowmetrics",
	Version: Version,
	Short:   "Delivery metrics computed from work-item status histories",
	Long: `Flowmetrics reads work-item status histories from a tracker or a
snapshot file and computes delivery metrics per item and per group:
time to delivery, time to market, tail time and development lead time,
with pause periods excluded and status-change noise filtered out.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)
	},
}

// Execute runs the root command. Called once from main.
func Execute() error {
	return RootCmd.Execute()
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "flowmetrics.yaml", "path to the configuration file")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func loadWorkspace() (*wiring.Workspace, error) {
	return wiring.NewWorkspace(configPath)
}
