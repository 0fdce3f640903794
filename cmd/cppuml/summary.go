package main

import (
	"fmt"
	"strings"
	"time"

	"cppuml/internal/core/ports"
	"cppuml/internal/data/history"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3B82F6")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#64748B")).
			Width(18)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FBBF24")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F87171")).
			Bold(true)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#334155")).
			Padding(0, 1)
)

func statusStyle(s history.Status) lipgloss.Style {
	switch s {
	case history.StatusOK:
		return successStyle
	case history.StatusPartial:
		return warnStyle
	default:
		return errorStyle
	}
}

func row(label string, value any) string {
	return labelStyle.Render(label) + fmt.Sprint(value)
}

func signed(n int) string {
	if n > 0 {
		return fmt.Sprintf("+%d", n)
	}
	return fmt.Sprintf("%d", n)
}

// renderSummary formats one run for the terminal.
func renderSummary(res ports.GenerateResult, outDir string) string {
	r := res.Run
	lines := []string{
		titleStyle.Render("cppuml") + "  " + statusStyle(r.Status).Render(string(r.Status)),
		row("units", fmt.Sprintf("%d (%d failed, %d with syntax errors)", r.Units, r.FailedUnits, r.SyntaxErrors)),
		row("classes", r.Classes),
		row("namespaces", r.Namespaces),
		row("attributes", r.Attributes),
		row("methods", r.Methods),
		row("parents", fmt.Sprintf("%d resolved, %d distant", r.ResolvedParents, r.DistantParents)),
		row("artifacts", fmt.Sprintf("%d written, %d failed", r.Artifacts, r.FailedArtifacts)),
		row("output", outDir),
		row("duration", r.Duration.Round(time.Millisecond)),
	}
	if res.Previous != nil {
		d := history.Compare(*res.Previous, r)
		lines = append(lines, row("since last run",
			fmt.Sprintf("classes %s, methods %s, attributes %s", signed(d.Classes), signed(d.Methods), signed(d.Attributes))))
	}
	for _, w := range res.Warnings {
		lines = append(lines, warnStyle.Render("! ")+w)
	}
	return boxStyle.Render(strings.Join(lines, "\n")) + "\n"
}

// renderRuns formats stored runs, oldest first.
func renderRuns(runs []history.Run) string {
	if len(runs) == 0 {
		return "no recorded runs\n"
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%-20s  %-8s  %7s  %10s  %9s  %s", "started", "status", "classes", "namespaces", "artifacts", "id")))
	b.WriteString("\n")
	for _, r := range runs {
		status := statusStyle(r.Status).Render(fmt.Sprintf("%-8s", r.Status))
		fmt.Fprintf(&b, "%-20s  %s  %7d  %10d  %9d  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), status, r.Classes, r.Namespaces, r.Artifacts, r.ID)
	}
	return b.String()
}
