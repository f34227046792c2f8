package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/secpipe/secpipe/pkg/types"
)

// MarkdownFormatter renders the report as a Markdown table suitable for
// pasting into docs, issues, or pull-request descriptions.
type MarkdownFormatter struct{}

func (f *MarkdownFormatter) Format(w io.Writer, report *types.Report) error {
	fmt.Fprintf(w, "## Scan report `%s`\n\n", report.ID)
	fmt.Fprintf(w, "**Status:** %s\n\n", statusLabel(report.Status))
	if report.Cancelled {
		fmt.Fprintln(w, "> Run was cancelled before completion.")
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "| Step | Command | Exit | Duration | Outcome |")
	fmt.Fprintln(w, "|------|---------|------|----------|---------|")
	for _, res := range report.Results {
		fmt.Fprintf(w, "| %s | `%s` | %d | %dms | %s |\n",
			escapeMarkdown(res.Step.Name),
			escapeMarkdown(res.Step.CommandLine()),
			res.ExitCode,
			res.DurationMillis,
			outcomeBadge(res),
		)
	}

	fmt.Fprintf(w, "\n**Summary:** %d steps run, %d passed, %d failed\n",
		len(report.Results), countPassed(report), len(report.Failed()))

	for _, res := range report.Failed() {
		detail := res.Error
		if detail == "" {
			detail = strings.TrimSpace(res.Stderr)
		}
		if detail == "" {
			continue
		}
		fmt.Fprintf(w, "\n### %s\n\n```\n%s\n```\n", res.Step.Name, detail)
	}

	return nil
}

// outcomeBadge returns a bold outcome label for Markdown.
func outcomeBadge(r types.StepResult) string {
	return fmt.Sprintf("**%s**", outcome(r))
}

// escapeMarkdown escapes pipe characters that would break Markdown tables.
func escapeMarkdown(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
