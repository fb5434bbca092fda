package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/abhisek/counsel/internal/advisor"
	"github.com/abhisek/counsel/internal/ranking"
	"github.com/abhisek/counsel/internal/store"
	"github.com/abhisek/counsel/internal/strategy"
	"github.com/abhisek/counsel/internal/ui/components"
	"github.com/abhisek/counsel/internal/ui/theme"
	"github.com/charmbracelet/colorprofile"
	"github.com/spf13/cobra"
)

const gainBarWidth = 12

// printer writes styled output, downsampling colors to what the
// destination supports (none when piped).
type printer struct {
	w io.Writer
}

func newPrinter(cmd *cobra.Command) *printer {
	return &printer{w: colorprofile.NewWriter(cmd.OutOrStdout(), os.Environ())}
}

func (p *printer) line(s string) { fmt.Fprintln(p.w, s) }

func (p *printer) hint(s string) { p.line(theme.Hint.Render(s)) }

func (p *printer) title(s string) { p.line(theme.Title.Render(s)) }

func (p *printer) field(label, value string) {
	p.line(theme.Label.Render(fmt.Sprintf("%-10s", label)) + " " + value)
}

func formatTargets(targets []store.Target) string {
	parts := make([]string, len(targets))
	for i, t := range targets {
		parts[i] = t.Feature + "=" + t.Value
	}
	return strings.Join(parts, " ")
}

func (p *printer) strategyHeader(name, model string, cfg strategy.Config) {
	targets := make([]store.Target, 0, cfg.Len())
	for _, t := range cfg.Targets() {
		targets = append(targets, store.Target{Feature: t.Feature, Value: t.Value.String()})
	}
	p.title(name)
	p.field("Model", model)
	p.field("Targets", formatTargets(targets))
	p.line("")
}

// changes lists the features a student has to move, in strategy order.
func changes(o ranking.Outcome, features []string) string {
	var parts []string
	for _, f := range features {
		if l := o.ImpLevels[f]; l > 0 {
			parts = append(parts, fmt.Sprintf("%s:%g", f, l))
		}
	}
	return strings.Join(parts, " ")
}

func (p *printer) outcomeTable(outcomes []ranking.Outcome, features []string, quadrants map[string]ranking.Quadrant, maxGain float64) {
	if len(outcomes) == 0 {
		p.hint("No students match.")
		return
	}
	tbl := components.Table{Columns: []components.Column{
		{Title: "#", Right: true},
		{Title: "Student"},
		{Title: "Name", Width: 20},
		{Title: "Final", Right: true},
		{Title: "Expected", Right: true},
		{Title: "Gain", Right: true},
		{Title: "", Width: gainBarWidth},
		{Title: "Effort", Right: true},
		{Title: "Priority"},
		{Title: "Changes"},
	}}
	for i, o := range outcomes {
		q := string(quadrants[o.StudentID])
		tbl.AddRow(
			fmt.Sprint(i+1),
			o.StudentID,
			o.Name.String(),
			fmt.Sprintf("%.1f", o.FinalGrade),
			fmt.Sprintf("%.2f", o.ExpectedGrade),
			theme.Signed(o.PerformanceGain).Render(fmt.Sprintf("%+.2f", o.PerformanceGain)),
			components.Bar{Value: o.PerformanceGain, Max: maxGain, Width: gainBarWidth}.View(),
			fmt.Sprintf("%g", o.Complexity),
			theme.Quadrant(q).Render(q),
			changes(o, features),
		)
	}
	fmt.Fprint(p.w, tbl.View())
}

func (p *printer) summary(s ranking.Summary) {
	p.line("")
	p.field("Students", fmt.Sprint(s.Count))
	p.field("Mean gain", theme.Signed(s.MeanGain).Render(fmt.Sprintf("%+.2f", s.MeanGain)))
	p.field("Max gain", fmt.Sprintf("%+.2f", s.MaxGain))
	p.field("Effort", fmt.Sprintf("%.1f mean", s.MeanComplexity))

	var parts []string
	for _, q := range ranking.Quadrants() {
		parts = append(parts, theme.Quadrant(string(q)).Render(fmt.Sprintf("%s %d", q, s.Quadrants[q])))
	}
	p.field("Priority", strings.Join(parts, "  "))
}

func (p *printer) runTable(runs []store.Run) {
	tbl := components.Table{Columns: []components.Column{
		{Title: "ID"},
		{Title: "Created"},
		{Title: "Strategy", Width: 28},
		{Title: "Students", Right: true},
		{Title: "Mean gain", Right: true},
		{Title: "Max gain", Right: true},
		{Title: "Effort", Right: true},
		{Title: "Data"},
	}}
	for _, r := range runs {
		tbl.AddRow(
			r.ID,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			r.Strategy,
			fmt.Sprint(r.Students),
			fmt.Sprintf("%+.2f", r.MeanGain),
			fmt.Sprintf("%+.2f", r.MaxGain),
			fmt.Sprintf("%.1f", r.MeanComplexity),
			r.DataPath,
		)
	}
	fmt.Fprint(p.w, tbl.View())
}

func (p *printer) runHeader(r *store.Run) {
	p.title("Run " + r.ID)
	p.field("Created", r.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	p.field("Strategy", r.Strategy)
	p.field("Model", r.Model)
	p.field("Data", r.DataPath)
	p.field("Targets", formatTargets(r.Targets))
	p.line("")
}

func (p *printer) brief(sc advisor.StudentContext, b *advisor.Brief) {
	var body strings.Builder
	fmt.Fprintf(&body, "%s  %s\n", theme.Title.Render(sc.Name), theme.Label.Render(sc.StudentID))
	fmt.Fprintf(&body, "%s  gain %s  effort %g\n\n",
		theme.Quadrant(string(sc.Quadrant)).Render(string(sc.Quadrant)),
		theme.Signed(sc.PerformanceGain).Render(fmt.Sprintf("%+.2f", sc.PerformanceGain)),
		sc.Complexity)
	body.WriteString(b.Summary)
	body.WriteString("\n")
	if len(b.Actions) > 0 {
		body.WriteString("\n" + theme.Header.Render("Actions") + "\n")
		for _, a := range b.Actions {
			fmt.Fprintf(&body, "• %s: %s\n", theme.Label.Render(a.Feature), a.Recommendation)
		}
	}
	if len(b.Risks) > 0 {
		body.WriteString("\n" + theme.Header.Render("Risks") + "\n")
		for _, r := range b.Risks {
			fmt.Fprintf(&body, "• %s\n", r)
		}
	}
	p.line(theme.Card.Render(strings.TrimRight(body.String(), "\n")))
}
