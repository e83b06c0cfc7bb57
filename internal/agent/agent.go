package agent

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"gcp-health-agent/internal/domain"
	"gcp-health-agent/internal/gcp"
	"gcp-health-agent/internal/util"
)

// HealthAgent runs the monitoring and inventory queries for one project at a
// time. All calls are synchronous; nothing is cached between calls.
type HealthAgent struct {
	metrics   domain.MetricSource
	inventory domain.Inventory
	logger    *util.AgentLogger

	// Now supplies the clock for query windows. Tests pin it.
	Now func() time.Time
	// ErrOut receives the per-project failure lines in contained mode.
	// Defaults to stderr.
	ErrOut io.Writer
}

func New(metrics domain.MetricSource, inventory domain.Inventory, logger *util.AgentLogger) *HealthAgent {
	return &HealthAgent{
		metrics:   metrics,
		inventory: inventory,
		logger:    logger,
		Now:       time.Now,
	}
}

func (a *HealthAgent) window() domain.TimeWindow {
	return gcp.Window(a.Now().UTC())
}

// ProjectCPUAverage returns the project-wide CPU utilization as a fraction in
// [0,1], or NaN when the window holds no data.
func (a *HealthAgent) ProjectCPUAverage(ctx context.Context, project string) (float64, error) {
	return a.metrics.ProjectAverage(ctx, project, gcp.MetricCPUUtilization, a.window())
}

// ProjectMemoryAverage returns the project-wide memory usage as a percentage
// in [0,100], or NaN when the window holds no data.
func (a *HealthAgent) ProjectMemoryAverage(ctx context.Context, project string) (float64, error) {
	return a.metrics.ProjectAverage(ctx, project, gcp.MetricMemoryPercentUsed, a.window())
}

// ListRunningVMs lists the project's instances and keeps those whose status
// is RUNNING. Zero running instances is a valid empty result.
func (a *HealthAgent) ListRunningVMs(ctx context.Context, project string) (int, []domain.VM, error) {
	all, err := a.inventory.ListInstances(ctx, project)
	if err != nil {
		return 0, nil, err
	}
	var running []domain.VM
	for _, vm := range all {
		if vm.Status == "RUNNING" {
			running = append(running, vm)
		}
	}
	return len(running), running, nil
}

// PerInstanceBreakdown joins per-instance CPU and memory series against a
// fresh inventory listing. CPU and memory share one query window. The join
// iterates the CPU key set only, so an instance with memory data but no CPU
// data yields no row, and a series whose instance id is missing from the
// inventory (a deleted instance still emitting residual data) is dropped.
func (a *HealthAgent) PerInstanceBreakdown(ctx context.Context, project string) ([]domain.InstanceRow, error) {
	window := a.window()

	cpu, err := a.metrics.InstanceSeries(ctx, project, gcp.MetricCPUUtilization, window)
	if err != nil {
		return nil, err
	}
	mem, err := a.metrics.InstanceSeries(ctx, project, gcp.MetricMemoryPercentUsed, window)
	if err != nil {
		return nil, err
	}

	all, err := a.inventory.ListInstances(ctx, project)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]domain.VM, len(all))
	for _, vm := range all {
		byID[vm.ID] = vm
	}

	var rows []domain.InstanceRow
	for key, cpuVal := range cpu {
		id, err := strconv.ParseUint(key.InstanceID, 10, 64)
		if err != nil {
			continue
		}
		vm, ok := byID[id]
		if !ok {
			continue
		}
		memVal := math.NaN()
		if v, ok := mem[key]; ok {
			memVal = v
		}
		rows = append(rows, domain.InstanceRow{
			Instance:          vm.Name,
			Zone:              vm.Zone,
			MachineType:       vm.MachineType,
			CPUUtilizationPct: round2(cpuVal * 100.0),
			MemoryUsedPct:     round2(memVal),
		})
	}
	return rows, nil
}

// Report runs the four queries in sequence with per-query error containment:
// a failed query is logged and its slot filled with NaN / zero / empty so a
// batch over several projects keeps going. The breakdown is skipped when no
// instance is running.
func (a *HealthAgent) Report(ctx context.Context, project string) domain.ProjectHealth {
	health := domain.ProjectHealth{
		Project: project,
		CPUAvg:  math.NaN(),
		MemAvg:  math.NaN(),
	}

	if cpu, err := a.ProjectCPUAverage(ctx, project); err != nil {
		a.logf("CPU query failed for %s: %v", project, err)
	} else {
		health.CPUAvg = cpu
	}

	if mem, err := a.ProjectMemoryAverage(ctx, project); err != nil {
		a.logf("Memory query failed for %s: %v", project, err)
	} else {
		health.MemAvg = mem
	}

	if count, vms, err := a.ListRunningVMs(ctx, project); err != nil {
		a.logf("VM list failed for %s: %v", project, err)
	} else {
		health.VMCount = count
		health.VMs = vms
	}

	if health.VMCount == 0 {
		return health
	}

	if rows, err := a.PerInstanceBreakdown(ctx, project); err != nil {
		a.logf("Per-instance query failed for %s: %v", project, err)
	} else {
		health.Instances = rows
	}
	return health
}

func (a *HealthAgent) logf(format string, args ...interface{}) {
	out := a.ErrOut
	if out == nil {
		out = os.Stderr
	}
	fmt.Fprintf(out, "[!] "+format+"\n", args...)
	if a.logger != nil {
		a.logger.LogEvent(util.LOG_LEVEL_ERROR, fmt.Sprintf(format, args...))
	}
}

func round2(v float64) float64 {
	return math.Round(v*100.0) / 100.0
}
