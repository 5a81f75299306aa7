package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// withRecorder installs a recording global tracer provider for one test.
func withRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return recorder
}

func attrMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	m := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		m[string(kv.Key)] = kv.Value
	}
	return m
}

func TestStartServiceSpan(t *testing.T) {
	recorder := withRecorder(t)

	ctx, span := StartServiceSpan(context.Background(), "report", "daily", SpanAttrPeriod, "month", SpanAttrDays, 31)
	assert.NotEmpty(t, GetTraceID(ctx))
	SetAttributes(span, SpanAttrCacheHit, true, 42, "ignored", "dangling")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "report.daily", spans[0].Name())
	assert.Equal(t, TracerName, spans[0].InstrumentationScope().Name)

	attrs := attrMap(spans[0].Attributes())
	assert.Equal(t, "month", attrs[SpanAttrPeriod].AsString())
	assert.Equal(t, int64(31), attrs[SpanAttrDays].AsInt64())
	assert.True(t, attrs[SpanAttrCacheHit].AsBool())
	assert.Len(t, attrs, 3)
}

func TestRecordError(t *testing.T) {
	recorder := withRecorder(t)

	_, span := StartServiceSpan(context.Background(), "ledger", "create_sale")
	RecordError(span, nil)
	RecordError(span, errors.New("boom"))
	span.End()

	s := recorder.Ended()[0]
	assert.Equal(t, codes.Error, s.Status().Code)
	assert.Equal(t, "boom", s.Status().Description)
	require.Len(t, s.Events(), 1)
	assert.Equal(t, "exception", s.Events()[0].Name)
}

func TestNilSpanHelpers(t *testing.T) {
	assert.NotPanics(t, func() {
		SetAttributes(nil, "k", "v")
		RecordError(nil, errors.New("x"))
	})
	assert.Empty(t, GetTraceID(context.Background()))
}

type stringer struct{}

func (stringer) String() string { return "2024-03-01" }

func TestToAttribute(t *testing.T) {
	assert.Equal(t, attribute.STRING, toAttribute("a", "s").Value.Type())
	assert.Equal(t, attribute.INT64, toAttribute("a", 1).Value.Type())
	assert.Equal(t, attribute.INT64, toAttribute("a", int64(1)).Value.Type())
	assert.Equal(t, attribute.FLOAT64, toAttribute("a", 1.5).Value.Type())
	assert.Equal(t, attribute.BOOL, toAttribute("a", true).Value.Type())
	assert.Equal(t, attribute.STRINGSLICE, toAttribute("a", []string{"x"}).Value.Type())
	assert.Equal(t, "2024-03-01", toAttribute("a", stringer{}).Value.AsString())
	assert.Equal(t, "[1 2]", toAttribute("a", []int{1, 2}).Value.AsString())
}
