package endpoints

import (
	"gcp-health-agent/internal/domain"
	"gcp-health-agent/internal/report"
)

// HealthResult is the rendered form of one project report, shared by the
// JSON API and the web page. Percentages are pre-formatted strings so the
// no-data sentinel serializes as "N/A" instead of breaking JSON encoding.
type HealthResult struct {
	Project   string         `json:"project"`
	CPUAvg    string         `json:"cpu_avg"`
	MemAvg    string         `json:"mem_avg"`
	VMCount   int            `json:"vm_count"`
	Instances []InstanceView `json:"instances"`
}

type InstanceView struct {
	Instance          string `json:"instance"`
	Zone              string `json:"zone"`
	MachineType       string `json:"machineType"`
	CPUUtilizationPct string `json:"cpu_utilization_pct"`
	MemoryUsedPct     string `json:"memory_used_pct"`
}

type SnapshotView struct {
	Project string `json:"project"`
	TakenAt int64  `json:"taken_at"`
	CPUPct  string `json:"cpu_pct"`
	MemPct  string `json:"mem_pct"`
	VMCount int    `json:"vm_count"`
}

func NewHealthResult(h domain.ProjectHealth) HealthResult {
	result := HealthResult{
		Project: h.Project,
		CPUAvg:  report.Percent(h.CPUAvg * 100.0),
		MemAvg:  report.Percent(h.MemAvg),
		VMCount: h.VMCount,
	}
	for _, r := range report.SortRows(h.Instances) {
		result.Instances = append(result.Instances, InstanceView{
			Instance:          r.Instance,
			Zone:              r.Zone,
			MachineType:       r.MachineType,
			CPUUtilizationPct: report.Number(r.CPUUtilizationPct),
			MemoryUsedPct:     report.Number(r.MemoryUsedPct),
		})
	}
	return result
}

func NewSnapshotView(snap domain.Snapshot) SnapshotView {
	return SnapshotView{
		Project: snap.Project,
		TakenAt: snap.TakenAt,
		CPUPct:  report.Number(snap.CPUPct),
		MemPct:  report.Number(snap.MemPct),
		VMCount: snap.VMCount,
	}
}
