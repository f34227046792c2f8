package types

import (
	"fmt"
	"strings"
	"time"
)

// Step is one external tool invocation: a named command with its arguments
// and failure policy. Steps are static configuration — built once at startup
// and never mutated by the runner.
type Step struct {
	// Name identifies the step. It must be unique within a run.
	Name string `json:"name"`
	// Command is the executable to run, either a bare name resolved via
	// PATH or an absolute path.
	Command string `json:"command"`
	// Args are passed to the command verbatim, in order.
	Args []string `json:"args,omitempty"`
	// ContinueOnFailure controls whether a non-zero exit halts the run.
	// The classic "|| true" sweep sets this on every step.
	ContinueOnFailure bool `json:"continue_on_failure"`
	// Timeout bounds the step's process. Zero means the runner default.
	Timeout time.Duration `json:"timeout,omitempty"`
	// Dir is the working directory for the process. Empty means inherit.
	Dir string `json:"dir,omitempty"`
	// Env entries (KEY=VALUE) are appended to the inherited environment.
	Env []string `json:"env,omitempty"`
}

// Validate checks that the step is runnable as configured.
func (s Step) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("step has no name")
	}
	if strings.TrimSpace(s.Command) == "" {
		return fmt.Errorf("step %q has no command", s.Name)
	}
	return nil
}

// CommandLine returns the full command line for display purposes.
func (s Step) CommandLine() string {
	if len(s.Args) == 0 {
		return s.Command
	}
	return s.Command + " " + strings.Join(s.Args, " ")
}
