// Package report renders project health results as plain text for the
// command-line tool.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gcp-health-agent/internal/domain"
)

// FormatProject renders the summary block and, when instances are running,
// the per-instance table sorted by zone then instance name.
func FormatProject(h domain.ProjectHealth) string {
	var b strings.Builder

	b.WriteString("\n=== GCP Project Health (last 10 minutes) ===\n")
	fmt.Fprintf(&b, "Project: %s\n", h.Project)
	fmt.Fprintf(&b, "Average CPU Utilization: %s\n", Percent(h.CPUAvg*100.0))
	fmt.Fprintf(&b, "Average Memory Used: %s\n", Percent(h.MemAvg))
	fmt.Fprintf(&b, "RUNNING VMs: %d\n", h.VMCount)

	if h.VMCount == 0 {
		return b.String()
	}

	b.WriteString("\n-- Per-instance (avg of last 10m) --\n")
	if len(h.Instances) == 0 {
		b.WriteString("No per-instance metrics found (ensure Ops Agent is installed).\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-32s %-15s %-20s %8s %8s\n", "INSTANCE", "ZONE", "TYPE", "CPU%", "MEM%")
	for _, r := range SortRows(h.Instances) {
		fmt.Fprintf(&b, "%-32s %-15s %-20s %8.2f %8.2f\n",
			truncate(r.Instance, 32), truncate(r.Zone, 15), truncate(r.MachineType, 20),
			r.CPUUtilizationPct, r.MemoryUsedPct)
	}
	return b.String()
}

// Percent renders a percentage with two decimals, or "N/A" when the value is
// the no-data sentinel.
func Percent(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", v)
}

// Number renders a two-decimal number, or "N/A" for the no-data sentinel.
func Number(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", v)
}

// SortRows returns a copy of rows ordered by zone, then instance name.
func SortRows(rows []domain.InstanceRow) []domain.InstanceRow {
	out := append([]domain.InstanceRow(nil), rows...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Zone != out[j].Zone {
			return out[i].Zone < out[j].Zone
		}
		return out[i].Instance < out[j].Instance
	})
	return out
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
