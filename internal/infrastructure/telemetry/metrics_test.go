package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), Config{}, 0, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Aggregation {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m.Data
		}
	}
	return out
}

func sumFor(t *testing.T, agg metricdata.Aggregation, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := agg.(metricdata.Sum[int64])
	require.True(t, ok)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestReportMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewReportMetrics(provider.Meter(TracerName))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordRequest(ctx, "daily", false)
	m.RecordRequest(ctx, "daily", true)
	m.RecordRequest(ctx, "daily", true)
	m.RecordBuild(ctx, 30*time.Millisecond, 31, 2)
	m.RecordBuild(ctx, 10*time.Millisecond, 7, 0)
	m.RecordLedgerWrite(ctx, "sale", nil)
	m.RecordLedgerWrite(ctx, "sale", errors.New("x"))

	data := collect(t, reader)

	assert.EqualValues(t, 2, sumFor(t, data["report.requests"], AttrOperation.String("daily"), AttrCache.String("hit")))
	assert.EqualValues(t, 1, sumFor(t, data["report.requests"], AttrOperation.String("daily"), AttrCache.String("miss")))
	assert.EqualValues(t, 2, sumFor(t, data["report.unclassified_transactions"]))
	assert.EqualValues(t, 1, sumFor(t, data["ledger.writes"], AttrKind.String("sale"), AttrOutcome.String("error")))

	hist, ok := data["report.build.duration"].(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, hist.DataPoints, 1)
	assert.EqualValues(t, 2, hist.DataPoints[0].Count)
	assert.Equal(t, ReportDurationBuckets, hist.DataPoints[0].Bounds)
}

func TestNoopReportMetrics(t *testing.T) {
	m := NoopReportMetrics()
	require.NotNil(t, m)
	assert.NotPanics(t, func() {
		m.RecordRequest(context.Background(), "summary", true)
		m.RecordBuild(context.Background(), time.Second, 1, 1)
		m.RecordLedgerWrite(context.Background(), "repair", nil)
	})
}
