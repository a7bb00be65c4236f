package telemetry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric/noop"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/config"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/logging"
)

func TestInit_DisabledWithoutEndpoint(t *testing.T) {
	shutdown, err := Init(context.Background(), config.ObservabilityConfig{}, "test", logging.Discard())
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
}

func TestReasonLabel(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, "none"},
		{gate.ErrUnauthenticated, "unauthenticated"},
		{fmt.Errorf("%w: %w", gate.ErrProfileMissing, errors.New("no rows")), "profile_missing"},
		{gate.ErrForbidden, "forbidden"},
		{errors.New("boom"), "other"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReasonLabel(tt.err))
	}
}

func TestMetricsRecord(t *testing.T) {
	meter := noop.NewMeterProvider().Meter("test")

	gm, err := newGateMetrics(meter)
	require.NoError(t, err)
	gm.RecordDecision(context.Background(), gate.Decision{Kind: gate.KindAllow, Area: gate.AreaAdmin}, time.Millisecond)

	sm, err := newServerMetrics(meter)
	require.NoError(t, err)
	sm.RecordRequest(context.Background(), "GET", "/api/health", 503, 2*time.Millisecond)
}

func TestRecordError(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))

	_, span := tp.Tracer(TracerGate).Start(context.Background(), "gate.Evaluate")
	RecordError(span, nil)
	RecordError(span, errors.New("store down"))
	span.End()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "store down", spans[0].Status().Description)
}
