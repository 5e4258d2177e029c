package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/trafficlab/internal/plan"
)

// CapacityOptions holds flags for the capacity command.
type CapacityOptions struct {
	*RootOptions
	Steps  int
	Ladder []int
}

// NewCapacityCommand creates the capacity command.
func NewCapacityCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CapacityOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "capacity <url>",
		Short: "Run a capacity test",
		Long: `Ask the backend to load a URL at increasing request counts until a step
becomes unhealthy, and report the largest healthy load.

--steps sends a single number; --ladder sends explicit request counts.
With neither, the default ladder is used.

Examples:
  trafficlab capacity http://10.0.0.5:8000/
  trafficlab capacity http://10.0.0.5:8000/ --ladder 10,50,100,200
  trafficlab capacity http://10.0.0.5:8000/ --steps 4`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			step := plan.Step{
				Kind:   plan.KindCapacity,
				URL:    args[0],
				Steps:  opts.Steps,
				Ladder: opts.Ladder,
			}.WithDefaults()
			if err := step.Validate(); err != nil {
				return WrapExitError(ExitCommandError, "invalid arguments", err)
			}
			return runStepCommand(cmd, opts.RootOptions, step)
		},
	}

	cmd.Flags().IntVar(&opts.Steps, "steps", 0, "number of capacity steps (sent as a single number)")
	cmd.Flags().IntSliceVar(&opts.Ladder, "ladder", nil, "explicit request counts per step, e.g. 10,25,50")
	cmd.MarkFlagsMutuallyExclusive("steps", "ladder")

	return cmd
}
