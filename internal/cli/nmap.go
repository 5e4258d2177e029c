package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/trafficlab/internal/plan"
)

// NewNmapCommand creates the nmap command.
func NewNmapCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "nmap <target>",
		Short: "Run an nmap service scan",
		Long: `Ask the backend to run an nmap service/version scan against a host.

The backend restricts targets to its lab allow-list.

Examples:
  trafficlab nmap 10.0.0.5
  trafficlab nmap 10.0.0.5 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStepCommand(cmd, rootOpts, plan.Step{Kind: plan.KindNmap, Target: args[0]})
		},
	}
}
