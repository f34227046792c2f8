package types

import "time"

// Sentinel exit codes recorded when no real exit code exists. The values
// follow shell conventions so report consumers can reuse existing intuition.
const (
	// ExitLaunchFailure marks a process that could not be started at all
	// (command not found, permission denied).
	ExitLaunchFailure = 127
	// ExitTimeout marks a process killed for exceeding its time budget,
	// matching GNU timeout(1).
	ExitTimeout = 124
	// ExitCancelled marks a process killed because the run was cancelled,
	// matching 128+SIGINT.
	ExitCancelled = 130
)

// Status is the aggregated outcome of a run.
type Status string

const (
	// StatusAllPassed: every executed step exited zero.
	StatusAllPassed Status = "ALL_PASSED"
	// StatusSomeFailedIgnored: at least one step failed, but every failure
	// was on a step with ContinueOnFailure set, so the run completed.
	StatusSomeFailedIgnored Status = "SOME_FAILED_IGNORED"
	// StatusFatalFailure: a step without ContinueOnFailure failed, or the
	// run was cancelled, halting the sequence.
	StatusFatalFailure Status = "FATAL_FAILURE"
)

// StepResult is the recorded outcome of one attempted step. It is created
// once per executed step and never mutated afterwards.
type StepResult struct {
	Step           Step      `json:"step"`
	ExitCode       int       `json:"exit_code"`
	Stdout         string    `json:"stdout,omitempty"`
	Stderr         string    `json:"stderr,omitempty"`
	StartedAt      time.Time `json:"started_at"`
	CompletedAt    time.Time `json:"completed_at"`
	DurationMillis int64     `json:"duration_ms"`
	// Started is false when the process could not be launched at all, in
	// which case ExitCode holds ExitLaunchFailure.
	Started  bool   `json:"started"`
	TimedOut bool   `json:"timed_out,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Passed reports whether the step ran and exited zero.
func (r StepResult) Passed() bool {
	return r.Started && r.ExitCode == 0
}

// Fatal reports whether this result halts a run.
func (r StepResult) Fatal() bool {
	return !r.Passed() && !r.Step.ContinueOnFailure
}

// Report is the aggregated outcome of a run: one StepResult per attempted
// step, in declared order. Steps declared after a fatal failure are absent
// from the report, not recorded as skipped.
type Report struct {
	ID          string       `json:"id"`
	Results     []StepResult `json:"results"`
	Status      Status       `json:"status"`
	Cancelled   bool         `json:"cancelled,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt time.Time    `json:"completed_at"`
}

// ComputeStatus derives the aggregate status from the recorded results.
// Cancellation always yields StatusFatalFailure.
func (r *Report) ComputeStatus() Status {
	if r.Cancelled {
		return StatusFatalFailure
	}
	status := StatusAllPassed
	for _, res := range r.Results {
		if res.Passed() {
			continue
		}
		if res.Fatal() {
			return StatusFatalFailure
		}
		status = StatusSomeFailedIgnored
	}
	return status
}

// Failed returns the results of steps that did not pass.
func (r *Report) Failed() []StepResult {
	var failed []StepResult
	for _, res := range r.Results {
		if !res.Passed() {
			failed = append(failed, res)
		}
	}
	return failed
}
