package align3

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/codalotl/align3"

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithTracerProvider makes the engine report spans to tp instead of the global provider.
func WithTracerProvider(tp trace.TracerProvider) EngineOption {
	return func(e *Engine) { e.tel.tp = tp }
}

// WithMeterProvider makes the engine report metrics to mp instead of the global provider.
func WithMeterProvider(mp metric.MeterProvider) EngineOption {
	return func(e *Engine) { e.tel.mp = mp }
}

// telemetry holds one engine's tracer and instruments. Instruments are created on first use.
type telemetry struct {
	tp trace.TracerProvider
	mp metric.MeterProvider

	tracer trace.Tracer

	compareLatency metric.Float64Histogram
	compareTotal   metric.Int64Counter
	failureTotal   metric.Int64Counter
	rowCount       metric.Int64Histogram

	once sync.Once
	err  error
}

func (t *telemetry) init() error {
	t.once.Do(func() {
		if t.tp == nil {
			t.tp = otel.GetTracerProvider()
		}
		if t.mp == nil {
			t.mp = otel.GetMeterProvider()
		}
		t.tracer = t.tp.Tracer(instrumentationName)
		meter := t.mp.Meter(instrumentationName)

		var err error
		t.compareLatency, err = meter.Float64Histogram(
			"align3_compare_duration_seconds",
			metric.WithDescription("Duration of alignment runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			t.err = err
			return
		}

		t.compareTotal, err = meter.Int64Counter(
			"align3_compare_total",
			metric.WithDescription("Total number of alignment runs"),
		)
		if err != nil {
			t.err = err
			return
		}

		t.failureTotal, err = meter.Int64Counter(
			"align3_failure_total",
			metric.WithDescription("Alignment runs that ended in an error, by kind"),
		)
		if err != nil {
			t.err = err
			return
		}

		t.rowCount, err = meter.Int64Histogram(
			"align3_rows",
			metric.WithDescription("Number of rows per alignment"),
		)
		if err != nil {
			t.err = err
			return
		}
	})
	return t.err
}

// start opens a span. If the instruments could not be created the span is a no-op.
func (t *telemetry) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if err := t.init(); err != nil || t.tracer == nil {
		return ctx, trace.SpanFromContext(context.Background())
	}
	return t.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on span and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// failureKind names err for the failure counter.
func failureKind(err error) string {
	var ie *InternalError
	switch {
	case errors.As(err, &ie):
		return ie.Kind.String()
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline"
	default:
		return "other"
	}
}

// record records the metrics of one run.
func (t *telemetry) record(ctx context.Context, op string, elapsed time.Duration, rows int, err error) {
	if err := t.init(); err != nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.Bool("success", err == nil),
	)
	t.compareLatency.Record(ctx, elapsed.Seconds(), attrs)
	t.compareTotal.Add(ctx, 1, attrs)
	if err != nil {
		t.failureTotal.Add(ctx, 1, metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("kind", failureKind(err)),
		))
		return
	}
	t.rowCount.Record(ctx, int64(rows), metric.WithAttributes(attribute.String("op", op)))
}
