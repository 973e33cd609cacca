package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/jaxxstorm/quicken/internal/analyze"
	"github.com/jaxxstorm/quicken/internal/model"
	"github.com/samber/lo"
)

func RenderPretty(report model.RunReport) string {
	title := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205")).Render("quicken")
	groupStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("111"))
	hostStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	successStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	failureStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))

	failures := lo.GroupBy(report.Failures, func(f model.HostFailure) int { return f.GroupIndex })

	lines := []string{title, ""}
	for i, group := range report.Groups {
		lines = append(lines, groupStyle.Render(fmt.Sprintf("%s (%d)", group.Name, len(group.Hosts))))
		for _, host := range group.Hosts {
			lines = append(lines, hostStyle.Render(fmt.Sprintf("  %s %-39s %s", successStyle.Render("OK"), host.IP, host.Hostname)))
		}
		for _, failure := range failures[i] {
			line := fmt.Sprintf("  %s %s: %s", failureStyle.Render("SKIP"), failure.Hostname, normalizeSpace(failure.Reason))
			lines = append(lines, hostStyle.Render(line))
		}
	}

	lines = append(lines, "")
	summary := fmt.Sprintf("%s %s", report.Diagnosis.Classification, report.Diagnosis.Summary)
	if analyze.Success(report.Diagnosis) {
		lines = append(lines, successStyle.Render(summary))
	} else {
		lines = append(lines, failureStyle.Render(summary))
	}
	if len(report.Diagnosis.Hints) > 0 {
		lines = append(lines, "Hints:")
		for _, hint := range report.Diagnosis.Hints {
			lines = append(lines, "- "+hint)
		}
	}

	return strings.Join(lines, "\n")
}

func normalizeSpace(value string) string {
	return strings.Join(strings.Fields(value), " ")
}
