package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/trafficlab/internal/plan"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Requests int
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load <url>",
		Short: "Run an HTTP load test",
		Long: `Ask the backend to send a burst of GET requests to a URL and report
success counts and latency.

Examples:
  trafficlab load http://10.0.0.5:8000/
  trafficlab load http://10.0.0.5:8000/ --requests 500`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStepCommand(cmd, opts.RootOptions, plan.Step{
				Kind:     plan.KindLoad,
				URL:      args[0],
				Requests: opts.Requests,
			})
		},
	}

	cmd.Flags().IntVarP(&opts.Requests, "requests", "n", plan.DefaultRequests, "number of requests to send")

	return cmd
}
