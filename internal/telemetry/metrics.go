package telemetry

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
)

// ServerMetrics holds the HTTP server instruments.
type ServerMetrics struct {
	RequestCounter  metric.Int64Counter
	RequestDuration metric.Float64Histogram
	ErrorCounter    metric.Int64Counter
}

// NewServerMetrics creates the HTTP instruments on the global meter provider.
func NewServerMetrics() (*ServerMetrics, error) {
	return newServerMetrics(otel.Meter("foundationapi/http"))
}

func newServerMetrics(meter metric.Meter) (*ServerMetrics, error) {
	requestCounter, err := meter.Int64Counter(
		"http.server.request.count",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}
	requestDuration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000),
	)
	if err != nil {
		return nil, err
	}
	errorCounter, err := meter.Int64Counter(
		"http.server.error.count",
		metric.WithDescription("Total number of HTTP server errors (5xx)"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}
	return &ServerMetrics{
		RequestCounter:  requestCounter,
		RequestDuration: requestDuration,
		ErrorCounter:    errorCounter,
	}, nil
}

// RecordRequest records one finished request.
func (m *ServerMetrics) RecordRequest(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.status_code", strconv.Itoa(status)),
	)
	m.RequestCounter.Add(ctx, 1, attrs)
	m.RequestDuration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
	if status >= 500 {
		m.ErrorCounter.Add(ctx, 1, attrs)
	}
}

// GateMetrics counts gate decisions. It implements gate.Recorder.
type GateMetrics struct {
	Decisions metric.Int64Counter
	Duration  metric.Float64Histogram
}

// NewGateMetrics creates the gate instruments on the global meter provider.
func NewGateMetrics() (*GateMetrics, error) {
	return newGateMetrics(otel.Meter("foundationapi/gate"))
}

func newGateMetrics(meter metric.Meter) (*GateMetrics, error) {
	decisions, err := meter.Int64Counter(
		"gate.decision.count",
		metric.WithDescription("Authorization gate decisions"),
		metric.WithUnit("{decision}"),
	)
	if err != nil {
		return nil, err
	}
	duration, err := meter.Float64Histogram(
		"gate.evaluation.duration",
		metric.WithDescription("Time to evaluate a gate decision, including store lookups"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100),
	)
	if err != nil {
		return nil, err
	}
	return &GateMetrics{Decisions: decisions, Duration: duration}, nil
}

// RecordDecision implements gate.Recorder.
func (g *GateMetrics) RecordDecision(ctx context.Context, d gate.Decision, elapsed time.Duration) {
	attrs := metric.WithAttributes(
		attribute.String("gate.decision", string(d.Kind)),
		attribute.String("gate.area", string(d.Area)),
		attribute.String("gate.reason", ReasonLabel(d.Reason)),
	)
	g.Decisions.Add(ctx, 1, attrs)
	g.Duration.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}

// ReasonLabel maps a decision reason onto a low-cardinality label.
func ReasonLabel(err error) string {
	switch {
	case err == nil:
		return "none"
	case errors.Is(err, gate.ErrProfileMissing):
		return "profile_missing"
	case errors.Is(err, gate.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, gate.ErrForbidden):
		return "forbidden"
	default:
		return "other"
	}
}

var _ gate.Recorder = (*GateMetrics)(nil)
