package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// Metric attribute keys
var (
	AttrOperation = attribute.Key("operation")
	AttrCache     = attribute.Key("cache")
	AttrKind      = attribute.Key("kind")
	AttrOutcome   = attribute.Key("outcome")
)

// ReportMetrics records report building and ledger write activity
type ReportMetrics struct {
	builds        metric.Int64Counter
	buildDuration metric.Float64Histogram
	reportDays    metric.Int64Histogram
	unclassified  metric.Int64Counter
	ledgerWrites  metric.Int64Counter
}

// NewReportMetrics creates the instruments on meter
func NewReportMetrics(meter metric.Meter) (*ReportMetrics, error) {
	var (
		m   ReportMetrics
		err error
	)
	if m.builds, err = meter.Int64Counter("report.requests",
		metric.WithDescription("Report requests by operation and cache outcome"),
		metric.WithUnit("{request}")); err != nil {
		return nil, fmt.Errorf("failed to create report.requests: %w", err)
	}
	if m.buildDuration, err = meter.Float64Histogram("report.build.duration",
		metric.WithDescription("Time spent loading records and aggregating a report"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(ReportDurationBuckets...)); err != nil {
		return nil, fmt.Errorf("failed to create report.build.duration: %w", err)
	}
	if m.reportDays, err = meter.Int64Histogram("report.days",
		metric.WithDescription("Day rows per built report"),
		metric.WithUnit("{day}")); err != nil {
		return nil, fmt.Errorf("failed to create report.days: %w", err)
	}
	if m.unclassified, err = meter.Int64Counter("report.unclassified_transactions",
		metric.WithDescription("Cash transactions that matched no report column"),
		metric.WithUnit("{transaction}")); err != nil {
		return nil, fmt.Errorf("failed to create report.unclassified_transactions: %w", err)
	}
	if m.ledgerWrites, err = meter.Int64Counter("ledger.writes",
		metric.WithDescription("Ledger record writes by kind and outcome"),
		metric.WithUnit("{write}")); err != nil {
		return nil, fmt.Errorf("failed to create ledger.writes: %w", err)
	}
	return &m, nil
}

// NoopReportMetrics returns metrics that record nothing
func NoopReportMetrics() *ReportMetrics {
	m, _ := NewReportMetrics(noop.NewMeterProvider().Meter(TracerName))
	return m
}

// RecordRequest counts one report request
func (m *ReportMetrics) RecordRequest(ctx context.Context, operation string, cacheHit bool) {
	cache := "miss"
	if cacheHit {
		cache = "hit"
	}
	m.builds.Add(ctx, 1, metric.WithAttributes(AttrOperation.String(operation), AttrCache.String(cache)))
}

// RecordBuild records one uncached report build
func (m *ReportMetrics) RecordBuild(ctx context.Context, d time.Duration, days, unclassified int) {
	m.buildDuration.Record(ctx, d.Seconds())
	m.reportDays.Record(ctx, int64(days))
	if unclassified > 0 {
		m.unclassified.Add(ctx, int64(unclassified))
	}
}

// RecordLedgerWrite counts one ledger write
func (m *ReportMetrics) RecordLedgerWrite(ctx context.Context, kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.ledgerWrites.Add(ctx, 1, metric.WithAttributes(AttrKind.String(kind), AttrOutcome.String(outcome)))
}
