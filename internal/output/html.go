package output

import (
	"fmt"
	"html/template"
	"io"

	"github.com/secpipe/secpipe/pkg/types"
)

// HTMLFormatter renders the report as a self-contained HTML page with
// styled outcome badges and expandable captured output per step.
type HTMLFormatter struct{}

func (f *HTMLFormatter) Format(w io.Writer, report *types.Report) error {
	return htmlTpl.Execute(w, report)
}

// outcomeClass maps a step result to a CSS class name.
func outcomeClass(r types.StepResult) string {
	switch outcome(r) {
	case "passed":
		return "pass"
	case "timed out", "cancelled":
		return "warn"
	default:
		return "fail"
	}
}

func statusClass(s types.Status) string {
	switch s {
	case types.StatusAllPassed:
		return "pass"
	case types.StatusSomeFailedIgnored:
		return "warn"
	default:
		return "fail"
	}
}

var funcMap = template.FuncMap{
	"outcome":      outcome,
	"outcomeClass": outcomeClass,
	"statusLabel":  statusLabel,
	"statusClass":  statusClass,
	"commandLine":  func(s types.Step) string { return s.CommandLine() },
	"passedCount":  countPassed,
	"failedCount":  func(r *types.Report) int { return len(r.Failed()) },
}

var htmlTpl = template.Must(template.New("report").Funcs(funcMap).Parse(fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>secpipe scan report</title>
<style>%s</style>
</head>
<body>
<div class="container">
  <h1>Scan report <code>{{.ID}}</code></h1>

  <div class="summary-bar">
    <span class="badge {{statusClass .Status}}">{{statusLabel .Status}}</span>
    <span class="total">{{len .Results}} steps run, {{passedCount .}} passed, {{failedCount .}} failed</span>
    {{if .Cancelled}}<span class="badge warn">cancelled</span>{{end}}
  </div>

  <table>
    <thead>
      <tr><th>Step</th><th>Command</th><th>Exit</th><th>Duration</th><th>Outcome</th></tr>
    </thead>
    <tbody>
      {{range .Results}}
      <tr>
        <td>{{.Step.Name}}</td>
        <td><code>{{commandLine .Step}}</code></td>
        <td>{{.ExitCode}}</td>
        <td>{{.DurationMillis}}ms</td>
        <td><span class="badge {{outcomeClass .}}">{{outcome .}}</span></td>
      </tr>
      {{end}}
    </tbody>
  </table>

  {{range .Results}}
  {{if or .Error .Stdout .Stderr}}
  <section class="step-section">
    <h2>{{.Step.Name}}</h2>
    {{if .Error}}<div class="error-box">{{.Error}}</div>{{end}}
    {{if .Stdout}}
    <details>
      <summary>stdout</summary>
      <pre>{{.Stdout}}</pre>
    </details>
    {{end}}
    {{if .Stderr}}
    <details>
      <summary>stderr</summary>
      <pre>{{.Stderr}}</pre>
    </details>
    {{end}}
  </section>
  {{end}}
  {{end}}
</div>
</body>
</html>`, cssStyles)))

const cssStyles = `
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,Helvetica,Arial,sans-serif;
     line-height:1.6;color:#1a1a2e;background:#f5f5fa;padding:2rem}
.container{max-width:960px;margin:0 auto}
h1{margin-bottom:1rem;font-size:1.8rem}
h2{margin:1.5rem 0 .75rem;font-size:1.3rem;border-bottom:2px solid #e0e0e0;padding-bottom:.3rem}
.summary-bar{display:flex;gap:.5rem;flex-wrap:wrap;align-items:center;margin-bottom:1.5rem}
.total{margin-left:.5rem;font-weight:600}
.badge{display:inline-block;padding:2px 10px;border-radius:12px;font-size:.8rem;font-weight:700;color:#fff;text-transform:uppercase}
.badge.pass{background:#2e7d32}
.badge.warn{background:#f9a825;color:#333}
.badge.fail{background:#d32f2f}
table{width:100%;border-collapse:collapse;margin-bottom:1rem}
th,td{text-align:left;padding:.5rem .75rem;border-bottom:1px solid #e0e0e0}
th{background:#eaeaea;font-weight:600}
tr:hover{background:#f0f0ff}
details{margin-top:.4rem}
summary{cursor:pointer;color:#1565c0;font-size:.85rem}
pre{background:#1a1a2e;color:#f5f5fa;padding:.75rem 1rem;border-radius:6px;overflow-x:auto;font-size:.85rem}
.error-box{background:#ffebee;color:#c62828;padding:.75rem 1rem;border-radius:6px;margin-bottom:1rem}
.step-section{margin-bottom:2rem}
`
