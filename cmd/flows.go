package cmd

import (
	"fmt"

	"flowbridge/internal/api"
	"flowbridge/internal/config"
	"flowbridge/internal/formatting"
	"flowbridge/internal/platform"

	"github.com/spf13/cobra"
)

var (
	flowsConfigPath string
	flowsName       string
	runsStatus      int
	runsLimit       int
)

// flowsCmd groups the direct platform query commands. These talk to the
// platform without starting the MCP server, for quick terminal inspection.
var flowsCmd = &cobra.Command{
	Use:   "flows",
	Short: "Inspect flows on the platform",
}

var flowsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List flows, optionally filtered by name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newPlatformClient()
		if err != nil {
			return err
		}

		flows, err := client.ListFlows(cmd.Context(), api.ListFlowsFilter{Name: flowsName})
		if err != nil {
			return fmt.Errorf("listing flows: %w", err)
		}

		formatting.NewTableFormatter().FormatFlows(flows)
		return nil
	},
}

var flowsRunsCmd = &cobra.Command{
	Use:   "runs <flow-id>",
	Short: "List runs of a flow, most recent first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newPlatformClient()
		if err != nil {
			return err
		}

		runs, err := client.GetRuns(cmd.Context(), args[0], api.RunWindow{
			Status: api.RunStatus(runsStatus),
			Limit:  runsLimit,
		})
		if err != nil {
			return fmt.Errorf("listing runs for flow %s: %w", args[0], err)
		}

		formatting.NewTableFormatter().FormatRuns(runs)
		return nil
	},
}

// newPlatformClient builds a platform client from the configuration.
func newPlatformClient() (*platform.Client, error) {
	settings, err := config.LoadSettings(flowsConfigPath)
	if err != nil {
		return nil, err
	}

	return platform.NewClient(platform.Options{
		CoreURL:  settings.Platform.CoreAPI,
		StartURL: settings.Platform.StartAPI,
		Token:    settings.Platform.Token,
		Timeout:  settings.Platform.Timeout(),
	})
}

func init() {
	rootCmd.AddCommand(flowsCmd)
	flowsCmd.AddCommand(flowsListCmd)
	flowsCmd.AddCommand(flowsRunsCmd)

	flowsCmd.PersistentFlags().StringVar(&flowsConfigPath, "config", "", "Configuration file path")
	flowsListCmd.Flags().StringVar(&flowsName, "name", "", "Filter flows by name")
	flowsRunsCmd.Flags().IntVar(&runsStatus, "status", 0, "Filter by run status code (3 = failure)")
	flowsRunsCmd.Flags().IntVar(&runsLimit, "limit", 0, "Maximum number of runs to return")
}
