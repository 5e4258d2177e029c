package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/trafficlab/internal/plan"
)

// NewDNSCommand creates the dns command.
func NewDNSCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dns <hostname>",
		Short: "Resolve a hostname from the backend",
		Long: `Ask the backend to resolve a hostname and list its addresses.

Example:
  trafficlab dns example.com`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStepCommand(cmd, rootOpts, plan.Step{Kind: plan.KindDNS, Hostname: args[0]})
		},
	}
}
