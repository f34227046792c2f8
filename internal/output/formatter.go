package output

import (
	"fmt"
	"io"

	"github.com/secpipe/secpipe/pkg/types"
)

// Formatter renders a scan report to a writer.
type Formatter interface {
	Format(w io.Writer, report *types.Report) error
}

// GetFormatter returns the appropriate formatter for the given format string.
func GetFormatter(format string) (Formatter, error) {
	switch format {
	case "table":
		return &TableFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	case "markdown":
		return &MarkdownFormatter{}, nil
	case "html":
		return &HTMLFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q (supported: table, json, markdown, html)", format)
	}
}

// outcome is the human-readable label for a step result.
func outcome(r types.StepResult) string {
	switch {
	case !r.Started:
		return "not started"
	case r.ExitCode == types.ExitCancelled:
		return "cancelled"
	case r.TimedOut:
		return "timed out"
	case r.ExitCode == 0:
		return "passed"
	default:
		return "failed"
	}
}

// statusLabel is the human-readable label for an aggregate status.
func statusLabel(s types.Status) string {
	switch s {
	case types.StatusAllPassed:
		return "all passed"
	case types.StatusSomeFailedIgnored:
		return "some failed (ignored)"
	case types.StatusFatalFailure:
		return "fatal failure"
	default:
		return string(s)
	}
}

func countPassed(report *types.Report) int {
	n := 0
	for _, r := range report.Results {
		if r.Passed() {
			n++
		}
	}
	return n
}
