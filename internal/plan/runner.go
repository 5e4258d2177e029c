package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/trafficlab/internal/api"
	"github.com/roach88/trafficlab/internal/console"
	"github.com/roach88/trafficlab/internal/history"
)

// ErrRecord marks a failure to append a step to the history.
var ErrRecord = errors.New("record history")

// Outcome is the result of one executed step.
type Outcome struct {
	Step     Step
	Record   history.Record
	Response api.Response
	Err      error
}

// Report summarizes a plan run.
type Report struct {
	Plan     string
	Outcomes []Outcome
	Failed   int
	Skipped  int
}

// Runner executes steps against the backend and records them in history.
//
// Thread-safety: a Runner holds no mutable state of its own and may run
// steps concurrently if its store, console and ID generator allow it.
type Runner struct {
	client  *api.Client
	history history.Store
	console *console.Console
	logger  *slog.Logger
	ids     history.IDGenerator
	now     func() time.Time
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithHistory records every executed step in s. Without it nothing is recorded.
func WithHistory(s history.Store) RunnerOption {
	return func(r *Runner) { r.history = s }
}

// WithConsole reports progress lines to c.
func WithConsole(c *console.Console) RunnerOption {
	return func(r *Runner) { r.console = c }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithIDGenerator sets the record ID source.
func WithIDGenerator(g history.IDGenerator) RunnerOption {
	return func(r *Runner) {
		if g != nil {
			r.ids = g
		}
	}
}

// WithClock sets the function used to stamp records.
func WithClock(now func() time.Time) RunnerOption {
	return func(r *Runner) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRunner creates a Runner that calls the backend through client.
func NewRunner(client *api.Client, opts ...RunnerOption) *Runner {
	r := &Runner{
		client: client,
		logger: slog.Default(),
		ids:    history.UUIDv7Generator{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunStep performs one backend call and records it.
//
// The call's error is returned unchanged so callers can inspect it with
// api.IsRequestError. A failure to record is joined onto it.
func (r *Runner) RunStep(ctx context.Context, step Step) (Outcome, error) {
	label := step.Describe()
	r.console.Logf("Starting %s", label)

	resp, err := r.call(ctx, step)

	rec := history.Record{
		ID:         r.ids.Generate(),
		Kind:       string(step.Kind),
		Params:     step,
		RecordedAt: r.now().UTC(),
	}
	if err != nil {
		rec.Error = err.Error()
		r.console.Logf("%s failed: %s", label, err)
		r.logger.Warn("step failed", "kind", step.Kind, "id", rec.ID, "error", err)
	} else {
		rec.Result = json.RawMessage(resp)
		r.console.Logf("%s finished", label)
		r.logger.Debug("step finished", "kind", step.Kind, "id", rec.ID, "bytes", len(resp))
	}

	out := Outcome{Step: step, Record: rec, Response: resp, Err: err}

	if r.history != nil {
		if appendErr := r.history.Append(ctx, rec); appendErr != nil {
			appendErr = fmt.Errorf("%w: %w", ErrRecord, appendErr)
			r.logger.Error("failed to record step", "kind", step.Kind, "id", rec.ID, "error", appendErr)
			return out, errors.Join(err, appendErr)
		}
	}
	return out, err
}

func (r *Runner) call(ctx context.Context, s Step) (api.Response, error) {
	switch s.Kind {
	case KindNmap:
		return r.client.TestNmap(ctx, s.Target)
	case KindLoad:
		return r.client.HTTPLoadTest(ctx, s.URL, s.Requests)
	case KindCapacity:
		if len(s.Ladder) > 0 {
			return r.client.CapacityPlan(ctx, s.URL, s.Ladder)
		}
		return r.client.CapacityTest(ctx, s.URL, s.Steps)
	case KindPing:
		return r.client.Ping(ctx)
	case KindPingStats:
		return r.client.PingStats(ctx, s.Target, s.Count)
	case KindTraceroute:
		return r.client.Traceroute(ctx, s.Target, s.MaxHops)
	case KindDNS:
		return r.client.DNSLookup(ctx, s.Hostname)
	default:
		return nil, fmt.Errorf("unknown kind %q", s.Kind)
	}
}

// Run executes the plan's steps in order. It stops at the first failure
// unless the plan sets continue_on_error. The returned error joins every
// step failure; the report is complete either way.
func (r *Runner) Run(ctx context.Context, p *Plan) (*Report, error) {
	report := &Report{Plan: p.Name}
	r.console.Logf("Running plan %s (%d steps)", p.Name, len(p.Steps))
	r.logger.Info("plan started", "plan", p.Name, "steps", len(p.Steps))

	var errs []error
	for i, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			report.Skipped = len(p.Steps) - i
			errs = append(errs, fmt.Errorf("plan %q interrupted before step %d: %w", p.Name, i+1, err))
			break
		}

		out, err := r.RunStep(ctx, step)
		report.Outcomes = append(report.Outcomes, out)
		if err == nil {
			continue
		}

		report.Failed++
		errs = append(errs, fmt.Errorf("step %d (%s): %w", i+1, step.Describe(), err))
		if !p.ContinueOnError {
			report.Skipped = len(p.Steps) - i - 1
			break
		}
	}

	r.console.Logf("Plan %s done: %d ok, %d failed, %d skipped",
		p.Name, len(report.Outcomes)-report.Failed, report.Failed, report.Skipped)
	r.logger.Info("plan finished", "plan", p.Name, "failed", report.Failed, "skipped", report.Skipped)

	return report, errors.Join(errs...)
}
