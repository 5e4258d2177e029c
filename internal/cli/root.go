package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/trafficlab/internal/history"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string
	Quiet      bool // suppress the progress console

	// Flag overrides; empty means "use the config value".
	BaseURL        string
	HistoryBackend string
	HistoryPath    string
	NoHistory      bool

	// IDGenerator and Clock allow overriding record IDs and timestamps (for testing).
	// If nil, UUIDv7 and time.Now are used.
	IDGenerator history.IDGenerator
	Clock       func() time.Time
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the trafficlab CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "trafficlab",
		Short: "trafficlab - network test client",
		Long: `Drive a traffic lab backend: nmap scans, HTTP load and capacity tests,
ping, traceroute and DNS lookups. Every test is recorded in a local history.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	pf.BoolVarP(&opts.Quiet, "quiet", "q", false, "suppress progress lines")
	pf.StringVar(&opts.BaseURL, "base-url", "", "backend base URL (overrides config)")
	pf.StringVar(&opts.HistoryBackend, "history-backend", "", fmt.Sprintf("history backend %v (overrides config)", history.ValidBackends))
	pf.StringVar(&opts.HistoryPath, "history-path", "", "history database or file path (overrides config)")
	pf.BoolVar(&opts.NoHistory, "no-history", false, "do not record tests in the history")

	// Add subcommands
	cmd.AddCommand(NewNmapCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewCapacityCommand(opts))
	cmd.AddCommand(NewPingCommand(opts))
	cmd.AddCommand(NewPingStatsCommand(opts))
	cmd.AddCommand(NewTracerouteCommand(opts))
	cmd.AddCommand(NewDNSCommand(opts))
	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
