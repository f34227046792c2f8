// Package runner executes an ordered list of external scan steps and
// aggregates their outcomes into a single report.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/secpipe/secpipe/pkg/types"
)

// Options holds runner-wide execution parameters.
type Options struct {
	// StepTimeout bounds steps that do not carry their own timeout.
	// Zero means no limit.
	StepTimeout time.Duration
	// Echo mirrors each tool's output to the terminal while capturing it.
	Echo bool
	// Logger, when set, receives step lifecycle events.
	Logger *zap.SugaredLogger
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{
		StepTimeout: 10 * time.Minute,
	}
}

// Runner drives sequential execution of scan steps. Steps run one at a
// time, never concurrently: later tools may depend on artifacts of earlier
// ones, and interleaved output would be unreadable.
type Runner struct {
	opts Options
}

// New creates a runner with the given options.
func New(opts Options) *Runner {
	return &Runner{opts: opts}
}

// Run executes the steps in declared order and returns the aggregated
// report. Per-step failures — non-zero exits, launch failures, timeouts —
// are recorded as data in the report, never returned as errors; the only
// errors Run itself returns are precondition violations (empty list,
// duplicate names, invalid step).
//
// A failing step without ContinueOnFailure halts the run immediately.
// Steps declared after the halt are absent from the report; they are not
// recorded as skipped. Cancelling ctx kills the current child process,
// records it with exit code types.ExitCancelled, and marks the report
// cancelled, which is always a fatal outcome.
func (r *Runner) Run(ctx context.Context, steps []types.Step) (*types.Report, error) {
	if len(steps) == 0 {
		return nil, errors.New("no steps to run")
	}
	seen := make(map[string]bool, len(steps))
	for _, step := range steps {
		if err := step.Validate(); err != nil {
			return nil, err
		}
		if seen[step.Name] {
			return nil, fmt.Errorf("duplicate step name %q", step.Name)
		}
		seen[step.Name] = true
	}

	report := &types.Report{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}

	for _, step := range steps {
		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}

		result := r.runStep(ctx, step)
		report.Results = append(report.Results, result)

		if ctx.Err() != nil {
			report.Cancelled = true
			break
		}
		if result.Fatal() {
			r.logf(func(l *zap.SugaredLogger) {
				l.Errorw("step failed, halting run", "step", step.Name, "exit_code", result.ExitCode)
			})
			break
		}
		if !result.Passed() {
			r.logf(func(l *zap.SugaredLogger) {
				l.Warnw("step failed, continuing", "step", step.Name, "exit_code", result.ExitCode)
			})
		}
	}

	report.CompletedAt = time.Now()
	report.Status = report.ComputeStatus()
	return report, nil
}

func (r *Runner) runStep(ctx context.Context, step types.Step) types.StepResult {
	stepCtx := ctx
	timeout := step.Timeout
	if timeout <= 0 {
		timeout = r.opts.StepTimeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		stepCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(stepCtx, step.Command, step.Args...)
	cmd.Dir = step.Dir
	if len(step.Env) > 0 {
		cmd.Env = append(os.Environ(), step.Env...)
	}

	var stdout, stderr bytes.Buffer
	if r.opts.Echo {
		cmd.Stdout = io.MultiWriter(os.Stdout, &stdout)
		cmd.Stderr = io.MultiWriter(os.Stderr, &stderr)
	} else {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	}

	result := types.StepResult{
		Step:      step,
		StartedAt: time.Now(),
	}
	r.logf(func(l *zap.SugaredLogger) {
		l.Infow("step started", "step", step.Name, "command", step.CommandLine())
	})

	if err := cmd.Start(); err != nil {
		result.ExitCode = types.ExitLaunchFailure
		result.Error = err.Error()
		return r.complete(result)
	}
	result.Started = true

	waitErr := cmd.Wait()
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	switch {
	case waitErr == nil:
		result.ExitCode = 0
	case ctx.Err() != nil:
		result.ExitCode = types.ExitCancelled
		result.Error = "run cancelled: " + ctx.Err().Error()
	case stepCtx.Err() == context.DeadlineExceeded:
		result.ExitCode = types.ExitTimeout
		result.TimedOut = true
		result.Error = fmt.Sprintf("step timed out after %s", timeout)
	default:
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) && exitErr.ExitCode() > 0 {
			result.ExitCode = exitErr.ExitCode()
		} else {
			// Killed by an external signal, or an I/O error on the pipes.
			result.ExitCode = 1
			result.Error = waitErr.Error()
		}
	}

	return r.complete(result)
}

// complete stamps the result's end time and duration and logs the outcome.
// Every attempted step passes through here, launch failures included.
func (r *Runner) complete(result types.StepResult) types.StepResult {
	result.CompletedAt = time.Now()
	result.DurationMillis = result.CompletedAt.Sub(result.StartedAt).Milliseconds()
	r.logf(func(l *zap.SugaredLogger) {
		l.Infow("step finished",
			"step", result.Step.Name,
			"exit_code", result.ExitCode,
			"duration_ms", result.DurationMillis,
		)
	})
	return result
}

func (r *Runner) logf(fn func(l *zap.SugaredLogger)) {
	if r.opts.Logger != nil {
		fn(r.opts.Logger)
	}
}
