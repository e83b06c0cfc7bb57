package gcp

import (
	"context"
	"fmt"
	"math"
	"time"

	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	"cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"google.golang.org/api/iterator"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"gcp-health-agent/internal/domain"
)

const (
	MetricCPUUtilization    = "compute.googleapis.com/instance/cpu/utilization"
	MetricMemoryPercentUsed = "agent.googleapis.com/memory/percent_used"

	// alignSeconds is both the look-back span and the alignment period.
	alignSeconds = 600
)

// Window returns the trailing ten-minute interval ending at now.
func Window(now time.Time) domain.TimeWindow {
	return domain.TimeWindow{Start: now.Add(-alignSeconds * time.Second), End: now}
}

// TimeSeriesLister is the seam between the metric source and the Cloud
// Monitoring client, so tests can substitute canned series.
type TimeSeriesLister interface {
	ListTimeSeries(ctx context.Context, req *monitoringpb.ListTimeSeriesRequest) ([]*monitoringpb.TimeSeries, error)
}

type metricClientLister struct {
	client *monitoring.MetricClient
}

func (l metricClientLister) ListTimeSeries(ctx context.Context, req *monitoringpb.ListTimeSeriesRequest) ([]*monitoringpb.TimeSeries, error) {
	var series []*monitoringpb.TimeSeries
	it := l.client.ListTimeSeries(ctx, req)
	for {
		ts, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error listing time series: %w", err)
		}
		series = append(series, ts)
	}
	return series, nil
}

// MetricSource reads utilization series from Cloud Monitoring.
type MetricSource struct {
	lister TimeSeriesLister
}

// NewMetricSource builds a source backed by a real Cloud Monitoring client
// using ambient credentials.
func NewMetricSource(ctx context.Context) (*MetricSource, error) {
	client, err := monitoring.NewMetricClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("error creating monitoring client: %w", err)
	}
	return &MetricSource{lister: metricClientLister{client: client}}, nil
}

// NewMetricSourceWithLister builds a source over any lister. Used by tests.
func NewMetricSourceWithLister(lister TimeSeriesLister) *MetricSource {
	return &MetricSource{lister: lister}
}

// listRequest builds the ListTimeSeries request: the given interval, a 600 s
// mean aligner, a cross-series mean reducer only for the project-wide query,
// and a filter pinning the metric type to gce_instance resources. No input
// validation happens here; a malformed project id fails at the API.
func listRequest(project, metricType string, window domain.TimeWindow, reduce bool) *monitoringpb.ListTimeSeriesRequest {
	aggregation := &monitoringpb.Aggregation{
		AlignmentPeriod:  durationpb.New(alignSeconds * time.Second),
		PerSeriesAligner: monitoringpb.Aggregation_ALIGN_MEAN,
	}
	if reduce {
		aggregation.CrossSeriesReducer = monitoringpb.Aggregation_REDUCE_MEAN
	}
	return &monitoringpb.ListTimeSeriesRequest{
		Name:   "projects/" + project,
		Filter: fmt.Sprintf("metric.type = %q AND resource.type = %q", metricType, "gce_instance"),
		Interval: &monitoringpb.TimeInterval{
			StartTime: timestamppb.New(window.Start),
			EndTime:   timestamppb.New(window.End),
		},
		View:        monitoringpb.ListTimeSeriesRequest_FULL,
		Aggregation: aggregation,
	}
}

// ProjectAverage issues the reduced project-wide query and returns the first
// point of the first series that has one, in API order. No averaging happens
// here; the cross-series reducer in the request is expected to collapse the
// result to a single series. NaN means no data, not an error.
func (s *MetricSource) ProjectAverage(ctx context.Context, project, metricType string, window domain.TimeWindow) (float64, error) {
	series, err := s.lister.ListTimeSeries(ctx, listRequest(project, metricType, window, true))
	if err != nil {
		return math.NaN(), err
	}
	for _, ts := range series {
		if len(ts.GetPoints()) > 0 {
			return ts.GetPoints()[0].GetValue().GetDoubleValue(), nil
		}
	}
	return math.NaN(), nil
}

// InstanceSeries issues the unreduced query and returns the first point of
// every series, keyed by the instance_id and zone resource labels. Series
// without points are skipped.
func (s *MetricSource) InstanceSeries(ctx context.Context, project, metricType string, window domain.TimeWindow) (map[domain.SeriesKey]float64, error) {
	series, err := s.lister.ListTimeSeries(ctx, listRequest(project, metricType, window, false))
	if err != nil {
		return nil, err
	}
	vals := make(map[domain.SeriesKey]float64)
	for _, ts := range series {
		if len(ts.GetPoints()) == 0 {
			continue
		}
		labels := ts.GetResource().GetLabels()
		key := domain.SeriesKey{InstanceID: labels["instance_id"], Zone: labels["zone"]}
		vals[key] = ts.GetPoints()[0].GetValue().GetDoubleValue()
	}
	return vals, nil
}
