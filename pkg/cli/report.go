package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/project"
)

// ReportView renders a lint report in every output format.
type ReportView struct {
	report *project.Report
}

// NewReportView wraps report for the formatters.
func NewReportView(report *project.Report) *ReportView {
	return &ReportView{report: report}
}

// Columns implements Tabular.
func (v *ReportView) Columns() []string {
	return []string{"component", "severity", "message", "type", "line", "source"}
}

// Rows implements Tabular. Line 0 is shown as "-".
func (v *ReportView) Rows() [][]string {
	var rows [][]string
	for _, d := range v.report.Diagnostics() {
		rows = append(rows, []string{
			d.ID,
			d.Severity.String(),
			strings.TrimSpace(d.Message),
			d.Label(),
			lineCell(d.Line),
			strings.TrimSpace(d.SourceExcerpt),
		})
	}
	return rows
}

// String renders the report one diagnostic per line, followed by a
// summary.
func (v *ReportView) String() string {
	var sb strings.Builder
	diags := v.report.Diagnostics()
	for _, d := range diags {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	sb.WriteString(v.Summary())
	sb.WriteString("\n")
	return sb.String()
}

// Summary describes the number of diagnostics by severity.
func (v *ReportView) Summary() string {
	diags := v.report.Diagnostics()
	components := pluralize(len(v.report.Results), "component")
	if len(diags) == 0 {
		return fmt.Sprintf("No problems found in %s.", components)
	}

	counts := diags.CountBySeverity()
	var parts []string
	for sev := diagnostic.Emergency; sev <= diagnostic.Debug; sev++ {
		if n := counts[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(sev.String())))
		}
	}
	return fmt.Sprintf("%s in %s (%s).", pluralize(len(diags), "problem"), components, strings.Join(parts, ", "))
}

type jsonDiagnostic struct {
	Component string `json:"component"`
	Severity  string `json:"severity"`
	Level     int    `json:"level"`
	Message   string `json:"message"`
	Type      string `json:"type"`
	Rule      string `json:"rule,omitempty"`
	Line      int    `json:"line"`
	Column    int    `json:"column,omitempty"`
	Source    string `json:"source,omitempty"`
}

type jsonReport struct {
	RunID       string           `json:"run_id"`
	Trigger     string           `json:"trigger"`
	StartedAt   time.Time        `json:"started_at"`
	DurationMS  int64            `json:"duration_ms"`
	Components  []string         `json:"components"`
	Summary     map[string]int   `json:"summary"`
	Diagnostics []jsonDiagnostic `json:"diagnostics"`
}

// MarshalJSON renders the report with severity labels and the RFC 5424
// level of each diagnostic.
func (v *ReportView) MarshalJSON() ([]byte, error) {
	out := jsonReport{
		RunID:       v.report.RunID,
		Trigger:     v.report.Trigger,
		StartedAt:   v.report.StartedAt,
		DurationMS:  v.report.Duration.Milliseconds(),
		Components:  []string{},
		Summary:     map[string]int{},
		Diagnostics: []jsonDiagnostic{},
	}
	for _, res := range v.report.Results {
		out.Components = append(out.Components, res.ID)
	}
	diags := v.report.Diagnostics()
	for sev, n := range diags.CountBySeverity() {
		out.Summary[sev.String()] = n
	}
	for _, d := range diags {
		out.Diagnostics = append(out.Diagnostics, jsonDiagnostic{
			Component: d.ID,
			Severity:  d.Severity.String(),
			Level:     int(d.Severity),
			Message:   d.Message,
			Type:      d.Label(),
			Rule:      d.Rule,
			Line:      d.Line,
			Column:    d.Column,
			Source:    d.SourceExcerpt,
		})
	}
	return json.Marshal(out)
}

func lineCell(line int) string {
	if line == 0 {
		return "-"
	}
	return strconv.Itoa(line)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
