package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/trafficlab/internal/api"
	"github.com/roach88/trafficlab/internal/history"
	"github.com/roach88/trafficlab/internal/plan"
)

// StepResult is the payload printed after a single test command.
type StepResult struct {
	ID     string          `json:"id"`
	Kind   string          `json:"kind"`
	Params plan.Step       `json:"params"`
	Result json.RawMessage `json:"result"`
}

// RenderText prints the backend result in human-readable form.
func (r StepResult) RenderText(w io.Writer) error {
	return renderResult(w, r.Params, api.Response(r.Result))
}

// runStepCommand runs one step through a fresh environment and prints its result.
func runStepCommand(cmd *cobra.Command, opts *RootOptions, step plan.Step) error {
	env, err := openEnvironment(cmd, opts)
	if err != nil {
		return err
	}
	defer env.Close()

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	out, err := env.runner.RunStep(commandContext(cmd), step)
	if err != nil {
		return reportStepError(formatter, step, err)
	}
	formatter.VerboseLog("recorded %s as %s", step.Kind, out.Record.ID)

	return formatter.Success(stepResult(out.Record, step))
}

// stepResult builds the printed payload from a history record.
func stepResult(rec history.Record, step plan.Step) StepResult {
	return StepResult{
		ID:     rec.ID,
		Kind:   rec.Kind,
		Params: step,
		Result: rec.Result,
	}
}

// reportStepError prints a JSON error envelope when requested and maps the
// failure to an exit code.
func reportStepError(f *OutputFormatter, step plan.Step, err error) error {
	code, details := classifyStepError(err)
	message := fmt.Sprintf("%s failed", step.Describe())
	if f.Format == "json" {
		if encErr := f.Error(code, err.Error(), details); encErr != nil {
			return WrapExitError(ExitCommandError, "failed to write output", encErr)
		}
	}
	if code == ErrCodeHistory {
		return WrapExitError(ExitCommandError, message, err)
	}
	return WrapExitError(ExitFailure, message, err)
}
