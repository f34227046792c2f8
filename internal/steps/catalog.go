// Package steps holds the builtin step catalog: the four-tool security
// sweep the runner performs when no explicit step list is configured.
package steps

import (
	"fmt"

	"github.com/secpipe/secpipe/pkg/types"
)

// Defaults returns the builtin sweep in its canonical order: dependency
// audit, static security lint, pattern scan, quality-server scan. Every
// builtin step tolerates failure so one noisy tool never hides the rest.
func Defaults() []types.Step {
	return []types.Step{
		{
			Name:              "audit",
			Command:           "safety",
			Args:              []string{"check", "--full-report"},
			ContinueOnFailure: true,
		},
		{
			Name:              "lint",
			Command:           "bandit",
			Args:              []string{"-r", "."},
			ContinueOnFailure: true,
		},
		{
			Name:              "scan",
			Command:           "semgrep",
			Args:              []string{"scan", "--config", "auto"},
			ContinueOnFailure: true,
		},
		{
			Name:              "quality",
			Command:           "sonar-scanner",
			ContinueOnFailure: true,
		},
	}
}

// Get retrieves a builtin step by name.
func Get(name string) (types.Step, error) {
	for _, step := range Defaults() {
		if step.Name == name {
			return step, nil
		}
	}
	return types.Step{}, fmt.Errorf("step %q not found", name)
}

// Names returns the builtin step names in sweep order.
func Names() []string {
	defaults := Defaults()
	names := make([]string, 0, len(defaults))
	for _, step := range defaults {
		names = append(names, step.Name)
	}
	return names
}

// Select filters steps down to the given names, preserving the declared
// sweep order rather than the order the names were requested in.
func Select(steps []types.Step, names []string) ([]types.Step, error) {
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		wanted[name] = true
	}

	var selected []types.Step
	for _, step := range steps {
		if wanted[step.Name] {
			selected = append(selected, step)
			delete(wanted, step.Name)
		}
	}
	for name := range wanted {
		return nil, fmt.Errorf("step %q not found", name)
	}
	return selected, nil
}

// ApplyToolPaths replaces step commands with configured executable
// overrides, keyed by either the step name or the default command.
func ApplyToolPaths(steps []types.Step, overrides map[string]string) []types.Step {
	if len(overrides) == 0 {
		return steps
	}
	out := make([]types.Step, len(steps))
	copy(out, steps)
	for i := range out {
		if path, ok := overrides[out[i].Name]; ok {
			out[i].Command = path
			continue
		}
		if path, ok := overrides[out[i].Command]; ok {
			out[i].Command = path
		}
	}
	return out
}
