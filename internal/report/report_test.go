package report

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"gcp-health-agent/internal/domain"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, "45.67%", Percent(45.666))
	assert.Equal(t, "0.00%", Percent(0))
	assert.Equal(t, "N/A", Percent(math.NaN()))
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "61.24", Number(61.238))
	assert.Equal(t, "N/A", Number(math.NaN()))
}

func TestFormatProjectNoData(t *testing.T) {
	out := FormatProject(domain.ProjectHealth{
		Project: "km-prod-eu",
		CPUAvg:  math.NaN(),
		MemAvg:  math.NaN(),
	})

	assert.Contains(t, out, "=== GCP Project Health (last 10 minutes) ===")
	assert.Contains(t, out, "Project: km-prod-eu")
	assert.Contains(t, out, "Average CPU Utilization: N/A")
	assert.Contains(t, out, "Average Memory Used: N/A")
	assert.Contains(t, out, "RUNNING VMs: 0")
	assert.NotContains(t, out, "Per-instance", "no table section with zero running VMs")
}

func TestFormatProjectAverages(t *testing.T) {
	out := FormatProject(domain.ProjectHealth{
		Project: "km-prod",
		CPUAvg:  0.4567,
		MemAvg:  61.2,
	})

	assert.Contains(t, out, "Average CPU Utilization: 45.67%")
	assert.Contains(t, out, "Average Memory Used: 61.20%")
}

func TestFormatProjectEmptyBreakdown(t *testing.T) {
	out := FormatProject(domain.ProjectHealth{
		Project: "km-prod",
		CPUAvg:  0.2,
		MemAvg:  50,
		VMCount: 2,
	})

	assert.Contains(t, out, "-- Per-instance (avg of last 10m) --")
	assert.Contains(t, out, "No per-instance metrics found (ensure Ops Agent is installed).")
}

func TestFormatProjectTableSorted(t *testing.T) {
	out := FormatProject(domain.ProjectHealth{
		Project: "km-prod",
		CPUAvg:  0.2,
		MemAvg:  50,
		VMCount: 3,
		Instances: []domain.InstanceRow{
			{Instance: "web-2", Zone: "us-central1-a", MachineType: "e2-medium", CPUUtilizationPct: 10.5, MemoryUsedPct: 20.25},
			{Instance: "db-1", Zone: "europe-west1-b", MachineType: "n2-standard-4", CPUUtilizationPct: 70, MemoryUsedPct: 80},
			{Instance: "web-1", Zone: "us-central1-a", MachineType: "e2-medium", CPUUtilizationPct: 30, MemoryUsedPct: 40},
		},
	})

	assert.Contains(t, out, "INSTANCE")
	dbIdx := strings.Index(out, "db-1")
	web1Idx := strings.Index(out, "web-1")
	web2Idx := strings.Index(out, "web-2")
	assert.True(t, dbIdx < web1Idx, "europe zone sorts before us zone")
	assert.True(t, web1Idx < web2Idx, "within a zone, instance names sort ascending")
	assert.Contains(t, out, "10.50")
	assert.Contains(t, out, "20.25")
}

func TestFormatProjectTruncatesWideFields(t *testing.T) {
	longName := strings.Repeat("a", 40)
	out := FormatProject(domain.ProjectHealth{
		Project: "km-prod",
		VMCount: 1,
		Instances: []domain.InstanceRow{
			{Instance: longName, Zone: "us-central1-a", MachineType: "e2-medium", CPUUtilizationPct: 1, MemoryUsedPct: 2},
		},
	})

	assert.Contains(t, out, strings.Repeat("a", 32))
	assert.NotContains(t, out, strings.Repeat("a", 33))
}

func TestSortRowsDoesNotMutateInput(t *testing.T) {
	rows := []domain.InstanceRow{
		{Instance: "b", Zone: "z2"},
		{Instance: "a", Zone: "z1"},
	}
	sorted := SortRows(rows)

	assert.Equal(t, "a", sorted[0].Instance)
	assert.Equal(t, "b", rows[0].Instance, "input order preserved")
}
