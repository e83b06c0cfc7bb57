package gcp

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/stretchr/testify/assert"
	monitoredrespb "google.golang.org/genproto/googleapis/api/monitoredres"

	"gcp-health-agent/internal/domain"
)

type fakeLister struct {
	series []*monitoringpb.TimeSeries
	err    error
	gotReq *monitoringpb.ListTimeSeriesRequest
}

func (f *fakeLister) ListTimeSeries(ctx context.Context, req *monitoringpb.ListTimeSeriesRequest) ([]*monitoringpb.TimeSeries, error) {
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.series, nil
}

func newSeries(instanceID, zone string, values ...float64) *monitoringpb.TimeSeries {
	ts := &monitoringpb.TimeSeries{
		Resource: &monitoredrespb.MonitoredResource{
			Type:   "gce_instance",
			Labels: map[string]string{"instance_id": instanceID, "zone": zone},
		},
	}
	for _, v := range values {
		ts.Points = append(ts.Points, &monitoringpb.Point{
			Value: &monitoringpb.TypedValue{
				Value: &monitoringpb.TypedValue_DoubleValue{DoubleValue: v},
			},
		})
	}
	return ts
}

func TestWindow(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	window := Window(now)

	assert.Equal(t, now, window.End)
	assert.Equal(t, now.Add(-600*time.Second), window.Start)
}

func TestProjectAverageRequestConstruction(t *testing.T) {
	lister := &fakeLister{}
	source := NewMetricSourceWithLister(lister)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	window := Window(now)

	_, err := source.ProjectAverage(context.Background(), "km-prod", MetricCPUUtilization, window)
	assert.NoError(t, err)

	req := lister.gotReq
	assert.NotNil(t, req)
	assert.Equal(t, "projects/km-prod", req.Name)
	assert.Equal(t, `metric.type = "compute.googleapis.com/instance/cpu/utilization" AND resource.type = "gce_instance"`, req.Filter)
	assert.Equal(t, monitoringpb.ListTimeSeriesRequest_FULL, req.View)
	assert.Equal(t, window.Start, req.Interval.StartTime.AsTime())
	assert.Equal(t, window.End, req.Interval.EndTime.AsTime())
	assert.Equal(t, 600*time.Second, req.Aggregation.AlignmentPeriod.AsDuration())
	assert.Equal(t, monitoringpb.Aggregation_ALIGN_MEAN, req.Aggregation.PerSeriesAligner)
	assert.Equal(t, monitoringpb.Aggregation_REDUCE_MEAN, req.Aggregation.CrossSeriesReducer)
}

func TestInstanceSeriesRequestHasNoReducer(t *testing.T) {
	lister := &fakeLister{}
	source := NewMetricSourceWithLister(lister)

	window := Window(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	_, err := source.InstanceSeries(context.Background(), "km-prod", MetricMemoryPercentUsed, window)
	assert.NoError(t, err)

	req := lister.gotReq
	assert.NotNil(t, req)
	assert.Equal(t, `metric.type = "agent.googleapis.com/memory/percent_used" AND resource.type = "gce_instance"`, req.Filter)
	assert.Equal(t, monitoringpb.Aggregation_REDUCE_NONE, req.Aggregation.CrossSeriesReducer)
	assert.Equal(t, monitoringpb.Aggregation_ALIGN_MEAN, req.Aggregation.PerSeriesAligner)
}

func TestProjectAverageReturnsFirstAvailablePoint(t *testing.T) {
	lister := &fakeLister{series: []*monitoringpb.TimeSeries{
		newSeries("1", "us-central1-a"),             // no points, skipped
		newSeries("2", "us-central1-a", 0.42, 0.55), // first point wins
		newSeries("3", "us-central1-a", 0.99),
	}}
	source := NewMetricSourceWithLister(lister)

	window := Window(time.Now().UTC())
	value, err := source.ProjectAverage(context.Background(), "km-prod", MetricCPUUtilization, window)
	assert.NoError(t, err)
	assert.Equal(t, 0.42, value)
}

func TestProjectAverageNoSeries(t *testing.T) {
	source := NewMetricSourceWithLister(&fakeLister{})

	window := Window(time.Now().UTC())
	value, err := source.ProjectAverage(context.Background(), "km-prod", MetricCPUUtilization, window)
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(value), "no series should yield the NaN sentinel")
}

func TestProjectAverageNoPoints(t *testing.T) {
	lister := &fakeLister{series: []*monitoringpb.TimeSeries{
		newSeries("1", "us-central1-a"),
		newSeries("2", "us-central1-b"),
	}}
	source := NewMetricSourceWithLister(lister)

	window := Window(time.Now().UTC())
	value, err := source.ProjectAverage(context.Background(), "km-prod", MetricCPUUtilization, window)
	assert.NoError(t, err)
	assert.True(t, math.IsNaN(value), "pointless series should yield the NaN sentinel")
}

func TestProjectAverageError(t *testing.T) {
	wantErr := errors.New("quota exceeded")
	source := NewMetricSourceWithLister(&fakeLister{err: wantErr})

	window := Window(time.Now().UTC())
	value, err := source.ProjectAverage(context.Background(), "km-prod", MetricCPUUtilization, window)
	assert.ErrorIs(t, err, wantErr)
	assert.True(t, math.IsNaN(value))
}

func TestInstanceSeriesKeyedByLabels(t *testing.T) {
	lister := &fakeLister{series: []*monitoringpb.TimeSeries{
		newSeries("123", "us-central1-a", 0.4567, 0.9),
		newSeries("456", "europe-west1-b", 0.12),
		newSeries("789", "us-central1-a"), // no points, dropped
	}}
	source := NewMetricSourceWithLister(lister)

	window := Window(time.Now().UTC())
	vals, err := source.InstanceSeries(context.Background(), "km-prod", MetricCPUUtilization, window)
	assert.NoError(t, err)

	assert.Equal(t, map[domain.SeriesKey]float64{
		{InstanceID: "123", Zone: "us-central1-a"}:  0.4567,
		{InstanceID: "456", Zone: "europe-west1-b"}: 0.12,
	}, vals)
}

func TestInstanceSeriesError(t *testing.T) {
	wantErr := errors.New("permission denied")
	source := NewMetricSourceWithLister(&fakeLister{err: wantErr})

	window := Window(time.Now().UTC())
	vals, err := source.InstanceSeries(context.Background(), "km-prod", MetricCPUUtilization, window)
	assert.ErrorIs(t, err, wantErr)
	assert.Nil(t, vals)
}
