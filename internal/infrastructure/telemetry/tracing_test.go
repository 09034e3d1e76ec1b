package telemetry_test

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
	"go.uber.org/zap/zaptest"

	"github.com/arbicart/backend/internal/infrastructure/telemetry"
)

// setupTestTracer installs an in-memory span recorder as the global provider.
func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))

	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func TestStartSpan_Attributes(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "pricing.Resolve",
		telemetry.SpanAttrZip, "14850",
		telemetry.SpanAttrItemCount, 3,
		42, "ignored non-string key",
	)
	telemetry.SetAttributes(span, telemetry.SpanAttrCacheHit, false)
	telemetry.AddEvent(span, "provider.skipped", telemetry.SpanAttrProvider, "scraper")
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "pricing.Resolve", spans[0].Name())
	assert.Equal(t, telemetry.TracerName, spans[0].InstrumentationScope().Name)

	attrs := spans[0].Attributes()
	assert.Contains(t, attrs, attribute.String(telemetry.SpanAttrZip, "14850"))
	assert.Contains(t, attrs, attribute.Int(telemetry.SpanAttrItemCount, 3))
	assert.Contains(t, attrs, attribute.Bool(telemetry.SpanAttrCacheHit, false))
	assert.Len(t, attrs, 3)

	require.Len(t, spans[0].Events(), 1)
	assert.Equal(t, "provider.skipped", spans[0].Events()[0].Name)
}

func TestRecordError(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartSpan(context.Background(), "failing")
	telemetry.RecordError(span, nil)
	telemetry.RecordError(span, errors.New("upstream unavailable"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "upstream unavailable", spans[0].Status().Description)
	assert.Len(t, spans[0].Events(), 1)
}

func TestProviders_Disabled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{ServiceName: "test"}, logger)
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{ServiceName: "test"}, logger)
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())

	pm, err := telemetry.NewPriceMetrics(mp.Meter("test"))
	require.NoError(t, err)
	pm.RecordResolution(ctx, "mock")
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestProviders_EnabledWithoutCollector(t *testing.T) {
	// gRPC exporters connect lazily, so construction succeeds offline.
	logger := zaptest.NewLogger(t)
	ctx := context.Background()
	original := otel.GetTracerProvider()
	originalMeter := otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		otel.SetMeterProvider(originalMeter)
	})

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           true,
		CollectorEndpoint: "127.0.0.1:1",
		SamplingRatio:     0.5,
		ServiceName:       "test",
		Insecure:          true,
	}, logger)
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           true,
		CollectorEndpoint: "127.0.0.1:1",
		ServiceName:       "test",
		Insecure:          true,
	}, logger)
	require.NoError(t, err)
	assert.True(t, mp.IsEnabled())

	shutdownCtx, cancel := context.WithCancel(ctx)
	cancel()
	_ = tp.Shutdown(shutdownCtx)
	_ = mp.Shutdown(shutdownCtx)
}
