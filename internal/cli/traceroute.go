package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/trafficlab/internal/plan"
)

// TracerouteOptions holds flags for the traceroute command.
type TracerouteOptions struct {
	*RootOptions
	MaxHops int
}

// NewTracerouteCommand creates the traceroute command.
func NewTracerouteCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TracerouteOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "traceroute <target>",
		Short: "Trace the route to a host from the backend",
		Long: `Ask the backend to trace the network path to a host.

Examples:
  trafficlab traceroute example.com
  trafficlab traceroute example.com --max-hops 10`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStepCommand(cmd, opts.RootOptions, plan.Step{
				Kind:    plan.KindTraceroute,
				Target:  args[0],
				MaxHops: opts.MaxHops,
			})
		},
	}

	cmd.Flags().IntVar(&opts.MaxHops, "max-hops", plan.DefaultMaxHops, "maximum number of hops")

	return cmd
}
