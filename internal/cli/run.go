package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/trafficlab/internal/plan"
)

// PlanStepSummary is one step of a plan report.
type PlanStepSummary struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
}

// PlanReport is the payload printed after a plan run.
type PlanReport struct {
	Plan    string            `json:"plan"`
	Total   int               `json:"total"`
	Failed  int               `json:"failed"`
	Skipped int               `json:"skipped"`
	Steps   []PlanStepSummary `json:"steps"`
}

// RenderText prints one line per executed step.
func (r PlanReport) RenderText(w io.Writer) error {
	fmt.Fprintf(w, "Plan %s: %d ok, %d failed, %d skipped\n",
		r.Plan, len(r.Steps)-r.Failed, r.Failed, r.Skipped)
	for _, s := range r.Steps {
		if s.OK {
			fmt.Fprintf(w, "  ok      %s\n", s.Description)
		} else {
			fmt.Fprintf(w, "  FAILED  %s: %s\n", s.Description, s.Error)
		}
	}
	return nil
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run <plan.yaml>",
		Short: "Run a batch of tests from a plan file",
		Long: `Run every step of a YAML test plan in order, recording each in the history.

The run stops at the first failing step unless the plan sets
continue_on_error. The exit code is 1 when any step failed.

Example:
  trafficlab run ./plans/nightly.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, rootOpts, args[0])
		},
	}
}

func runPlan(cmd *cobra.Command, opts *RootOptions, path string) error {
	p, err := plan.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load plan", err)
	}

	env, err := openEnvironment(cmd, opts)
	if err != nil {
		return err
	}
	defer env.Close()

	report, runErr := env.runner.Run(commandContext(cmd), p)

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	summary := summarizeReport(report, len(p.Steps))

	if runErr == nil {
		if err := formatter.Success(summary); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
		return nil
	}

	message := fmt.Sprintf("plan %s failed", p.Name)
	if opts.Format == "json" {
		err = formatter.Error(ErrCodePlanFailed, message, summary)
	} else {
		err = summary.RenderText(formatter.Writer)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	return WrapExitError(ExitFailure, message, runErr)
}

func summarizeReport(report *plan.Report, total int) PlanReport {
	out := PlanReport{
		Plan:    report.Plan,
		Total:   total,
		Failed:  report.Failed,
		Skipped: report.Skipped,
		Steps:   make([]PlanStepSummary, 0, len(report.Outcomes)),
	}
	for _, o := range report.Outcomes {
		s := PlanStepSummary{
			ID:          o.Record.ID,
			Kind:        o.Record.Kind,
			Description: o.Step.Describe(),
			OK:          o.Err == nil,
		}
		if o.Err != nil {
			s.Error = o.Err.Error()
		}
		out.Steps = append(out.Steps, s)
	}
	return out
}
