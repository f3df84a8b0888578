// Package report renders provisioning and deployment outcomes for humans.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/arthur-debert/provisionfs/pkg/provisionfs/bridge"
	"github.com/arthur-debert/provisionfs/pkg/provisionfs/core"
)

type group struct {
	title  string
	symbol string
	kinds  []core.ResultKind
	color  lipgloss.Color
}

// Groups are rendered in this order. Ambiguous skips get their own group so
// they are never mistaken for plain not-found skips.
var groups = []group{
	{"Failed", "✗", []core.ResultKind{core.KindFailed}, "196"},
	{"Needs manual review (matched only when whitespace is ignored)", "!", []core.ResultKind{core.KindSkippedAmbiguous}, "214"},
	{"Target not found", "?", []core.ResultKind{core.KindSkippedNotFound}, "245"},
	{"File missing", "-", []core.ResultKind{core.KindSkippedMissingFile}, "245"},
	{"Changed", "+", []core.ResultKind{core.KindMaterialized, core.KindPatched}, "42"},
	{"Unchanged", "=", []core.ResultKind{core.KindAlreadyPresent, core.KindAlreadyPatched}, "242"},
}

type styles struct {
	header lipgloss.Style
	path   lipgloss.Style
	detail lipgloss.Style
	totals lipgloss.Style
	kind   func(lipgloss.Color) lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		path:   r.NewStyle().Bold(true),
		detail: r.NewStyle().Foreground(lipgloss.Color("242")).Italic(true),
		totals: r.NewStyle().Bold(true).MarginTop(1),
		kind: func(c lipgloss.Color) lipgloss.Style {
			return r.NewStyle().Foreground(c).Bold(true)
		},
	}
}

// Render writes the per-file outcomes grouped by status, followed by the
// deployment steps when there are any, and a totals line.
func Render(w io.Writer, report *core.Report, steps []bridge.StepResult) error {
	st := newStyles(w)
	var sb strings.Builder

	sb.WriteString(st.header.Render("Provisioning"))
	sb.WriteString("\n")
	for _, g := range groups {
		ops := collect(report, g.kinds)
		if len(ops) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n%s\n", st.kind(g.color).Render(fmt.Sprintf("%s (%d)", g.title, len(ops)))))
		for _, op := range ops {
			sb.WriteString(fmt.Sprintf("  %s %s", st.kind(g.color).Render(g.symbol), st.path.Render(op.Path)))
			if d := describe(op); d != "" {
				sb.WriteString("  " + st.detail.Render(d))
			}
			sb.WriteString("\n")
		}
	}

	if len(steps) > 0 {
		sb.WriteString("\n")
		sb.WriteString(st.header.Render("Deployment"))
		sb.WriteString("\n")
		for _, s := range steps {
			sym, color := stepSymbol(s.Status)
			sb.WriteString(fmt.Sprintf("  %s %s", st.kind(color).Render(sym), s.Description))
			if s.Err != nil {
				sb.WriteString("  " + st.detail.Render(s.Err.Error()))
			}
			sb.WriteString("\n")
		}
	}

	sb.WriteString(st.totals.Render(Totals(report)))
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// RenderWarnings writes one line per warning; nothing when there are none.
func RenderWarnings(w io.Writer, warnings []string) error {
	if len(warnings) == 0 {
		return nil
	}
	st := newStyles(w)
	var sb strings.Builder
	sb.WriteString("\n")
	for _, warning := range warnings {
		sb.WriteString(st.kind("214").Render("! warning: "))
		sb.WriteString(warning)
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// Totals summarizes the report on a single line.
func Totals(report *core.Report) string {
	if report == nil {
		report = &core.Report{}
	}
	return fmt.Sprintf("%d materialized, %d patched, %d unchanged, %d ambiguous, %d not found, %d missing, %d failed",
		report.Count(core.KindMaterialized),
		report.Count(core.KindPatched),
		report.Count(core.KindAlreadyPresent)+report.Count(core.KindAlreadyPatched),
		report.Count(core.KindSkippedAmbiguous),
		report.Count(core.KindSkippedNotFound),
		report.Count(core.KindSkippedMissingFile),
		report.Count(core.KindFailed),
	)
}

func collect(report *core.Report, kinds []core.ResultKind) []core.OperationResult {
	if report == nil {
		return nil
	}
	var out []core.OperationResult
	for _, op := range report.Operations {
		for _, k := range kinds {
			if op.Kind == k {
				out = append(out, op)
				break
			}
		}
	}
	return out
}

func describe(op core.OperationResult) string {
	switch {
	case op.Err != nil:
		return op.Err.Error()
	case op.Detail != "":
		return op.Detail
	default:
		return ""
	}
}

func stepSymbol(status bridge.StepStatus) (string, lipgloss.Color) {
	switch status {
	case bridge.StepSucceeded:
		return "✓", "42"
	case bridge.StepFailedIgnored:
		return "!", "214"
	case bridge.StepFailed:
		return "✗", "196"
	default:
		return "·", "242"
	}
}
