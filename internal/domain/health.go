package domain

import (
	"context"
	"time"
)

// VM is one Compute Engine instance from the aggregated listing. Zone and
// MachineType hold the last segment of the resource path, not the full URL.
type VM struct {
	Name        string `json:"name"`
	Zone        string `json:"zone"`
	MachineType string `json:"machineType"`
	ID          uint64 `json:"id"`
	Status      string `json:"status"`
}

// InstanceRow is one joined metrics/inventory row. Percent fields are rounded
// to two decimals; MemoryUsedPct is NaN when the instance reported no memory
// series in the window.
type InstanceRow struct {
	Instance          string  `json:"instance"`
	Zone              string  `json:"zone"`
	MachineType       string  `json:"machineType"`
	CPUUtilizationPct float64 `json:"cpu_utilization_pct"`
	MemoryUsedPct     float64 `json:"memory_used_pct"`
}

// ProjectHealth is the full result for one project. CPUAvg is a fraction in
// [0,1], MemAvg a percentage in [0,100]; both are NaN when no data came back.
type ProjectHealth struct {
	Project   string
	CPUAvg    float64
	MemAvg    float64
	VMCount   int
	VMs       []VM
	Instances []InstanceRow
}

// TimeWindow is the metric query interval. It is computed once per logical
// operation and passed down so that the CPU and memory queries of a single
// breakdown share the same interval.
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// SeriesKey identifies one instance's time series by the monitored resource
// labels. InstanceID is the numeric instance id as a decimal string.
type SeriesKey struct {
	InstanceID string
	Zone       string
}

type MetricSource interface {
	// ProjectAverage returns the first point of the first non-empty series
	// for the project-wide reduced query, or NaN when nothing came back.
	ProjectAverage(ctx context.Context, project, metricType string, window TimeWindow) (float64, error)
	// InstanceSeries returns the first point of every per-instance series,
	// keyed by (instance id, zone).
	InstanceSeries(ctx context.Context, project, metricType string, window TimeWindow) (map[SeriesKey]float64, error)
}

type Inventory interface {
	// ListInstances returns every instance of the project across all zones,
	// regardless of status. Pagination is handled internally.
	ListInstances(ctx context.Context, project string) ([]VM, error)
}

// Snapshot is one persisted report summary. CPUPct and MemPct are percentages
// rounded to two decimals, NaN when the report had no data.
type Snapshot struct {
	Project string  `json:"project"`
	TakenAt int64   `json:"taken_at"`
	CPUPct  float64 `json:"cpu_pct"`
	MemPct  float64 `json:"mem_pct"`
	VMCount int     `json:"vm_count"`
}

type ReportStore interface {
	Init() error
	StoreSnapshot(ctx context.Context, snap Snapshot) error
	GetSnapshots(ctx context.Context, project string, startTime, endTime int64, limit, offset int) ([]Snapshot, error)
	Close() error
}
