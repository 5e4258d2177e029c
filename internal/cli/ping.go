package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/trafficlab/internal/plan"
)

// NewPingCommand creates the ping command.
func NewPingCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check that the backend is up",
		Long: `Call the backend health endpoint.

Example:
  trafficlab ping --base-url http://192.168.56.104:5000`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStepCommand(cmd, rootOpts, plan.Step{Kind: plan.KindPing})
		},
	}
}

// PingStatsOptions holds flags for the ping-stats command.
type PingStatsOptions struct {
	*RootOptions
	Count int
}

// NewPingStatsCommand creates the ping-stats command.
func NewPingStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PingStatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "ping-stats <target>",
		Short: "Ping a host from the backend",
		Long: `Ask the backend to ping a host and report packet loss and round-trip times.

Examples:
  trafficlab ping-stats 10.0.0.1
  trafficlab ping-stats 10.0.0.1 --count 10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStepCommand(cmd, opts.RootOptions, plan.Step{
				Kind:   plan.KindPingStats,
				Target: args[0],
				Count:  opts.Count,
			})
		},
	}

	cmd.Flags().IntVar(&opts.Count, "count", plan.DefaultCount, "number of echo requests")

	return cmd
}
