package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/secpipe/secpipe/pkg/types"
)

// stderrExcerptLimit caps how much captured stderr the table view shows
// per failed step. The full capture is always available via -o json.
const stderrExcerptLimit = 400

// TableFormatter renders the report as a colored terminal table.
type TableFormatter struct{}

func (f *TableFormatter) Format(w io.Writer, report *types.Report) error {
	fmt.Fprintf(w, "\nScan run %s — %s\n\n", report.ID, colorStatus(report.Status))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Step", "Command", "Exit", "Duration", "Outcome"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	table.SetColumnSeparator("│")

	for _, res := range report.Results {
		table.Append([]string{
			res.Step.Name,
			res.Step.CommandLine(),
			fmt.Sprintf("%d", res.ExitCode),
			fmt.Sprintf("%dms", res.DurationMillis),
			colorOutcome(res),
		})
	}
	table.Render()

	fmt.Fprintf(w, "\n  %d steps run, %d passed, %d failed\n",
		len(report.Results), countPassed(report), len(report.Failed()))
	if report.Cancelled {
		fmt.Fprintln(w, "  Run was cancelled before completion.")
	}

	for _, res := range report.Failed() {
		detail := res.Error
		if detail == "" {
			detail = excerpt(res.Stderr)
		}
		if detail == "" {
			continue
		}
		fmt.Fprintf(w, "\n  [%s] %s\n", res.Step.Name, detail)
	}

	return nil
}

func colorOutcome(r types.StepResult) string {
	label := outcome(r)
	switch label {
	case "passed":
		return color.GreenString(label)
	case "timed out", "cancelled":
		return color.YellowString(label)
	default:
		return color.RedString(label)
	}
}

func colorStatus(s types.Status) string {
	switch s {
	case types.StatusAllPassed:
		return color.GreenString(statusLabel(s))
	case types.StatusSomeFailedIgnored:
		return color.YellowString(statusLabel(s))
	default:
		return color.RedString(statusLabel(s))
	}
}

// excerpt returns the tail of captured output, compacted to one line.
func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrExcerptLimit {
		cut := len(s) - stderrExcerptLimit
		// Never slice mid-rune: tool output is arbitrary UTF-8.
		for cut < len(s) && !utf8.RuneStart(s[cut]) {
			cut++
		}
		s = "…" + s[cut:]
	}
	return strings.ReplaceAll(s, "\n", " | ")
}
