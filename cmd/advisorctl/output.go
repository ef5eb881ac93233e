package main

import (
	"fmt"
	"strings"

	"work-advisor/internal/models"
	"work-advisor/internal/prediction/orchestrator"
	"work-advisor/internal/prediction/report"
	"work-advisor/pkg/registry"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	panelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func renderProgress(v orchestrator.View) string {
	line := fmt.Sprintf("[%d/%d] %s", v.Progress.Completed, v.Progress.Total, v.State)
	if v.State.Terminal() {
		line += fmt.Sprintf(" in %dms", v.ElapsedMs)
	}
	return mutedStyle.Render(line)
}

// renderOutcomes prints one row per key in the given order; keys without an outcome show as pending.
func renderOutcomes(keys []string, outcomes map[string]models.Outcome) string {
	width := len("KEY")
	for _, k := range keys {
		if len(k) > width {
			width = len(k)
		}
	}

	rows := []string{titleStyle.Render(fmt.Sprintf("%-*s  %-12s  %8s  %8s", width, "KEY", "PREDICTION", "TOOK", "SINCE"))}
	for _, k := range keys {
		o, ok := outcomes[k]
		switch {
		case !ok:
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("%-*s  %-12s", width, k, "pending")))
		case o.IsSuccess():
			rows = append(rows, fmt.Sprintf("%-*s  %s  %6dms  %6dms", width, k,
				okStyle.Render(fmt.Sprintf("%-12.2f", o.Value)), o.DurationMs, o.RelativeDurationMs))
		default:
			rows = append(rows, fmt.Sprintf("%-*s  %s", width, k, errorStyle.Render("failed: "+o.Reason)))
		}
	}
	return strings.Join(rows, "\n")
}

func renderSummary(s report.Summary) string {
	lines := []string{
		fmt.Sprintf("%d predictions, %d succeeded, %d failed", s.Total, s.Succeeded, s.Failed),
	}
	if s.Succeeded > 0 {
		lines = append(lines,
			fmt.Sprintf("min %s  max %s  mean %s  spread %s", s.Min, s.Max, s.Mean, s.Spread),
			fmt.Sprintf("highest: %s", s.Entries[0].Key),
		)
	}
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func renderSnapshotList(list []models.BatchSnapshot) string {
	if len(list) == 0 {
		return mutedStyle.Render("no snapshots saved")
	}
	rows := make([]string, 0, len(list)+1)
	rows = append(rows, titleStyle.Render(fmt.Sprintf("%-36s  %-19s  %7s  %s", "ID", "CREATED", "RESULTS", "NAME")))
	for _, snap := range list {
		rows = append(rows, fmt.Sprintf("%-36s  %-19s  %7d  %s",
			snap.ID, snap.CreatedAt.Format("2006-01-02 15:04:05"), len(snap.Results), snap.Name))
	}
	return strings.Join(rows, "\n")
}

func renderCatalog(cat *registry.RegionCatalog) string {
	rows := []string{titleStyle.Render(fmt.Sprintf("Region catalog %s", cat.Version))}
	for _, r := range cat.Regions {
		locs := mutedStyle.Render("region-level only")
		if len(r.Locations) > 0 {
			locs = strings.Join(r.Locations, ", ")
		}
		rows = append(rows, fmt.Sprintf("%-3s %-20s %s", r.Code, r.Name, locs))
	}
	return strings.Join(rows, "\n")
}
