package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"qaueue/internal/queue"
)

const engineScopeName = "qaueue/engine"

// Operations records one span, one counter increment, and one duration
// sample per engine call. With telemetry disabled every instrument is a no-op.
type Operations struct {
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
}

// NewOperations builds the engine instruments from the global providers.
func NewOperations() *Operations {
	m := Meter(engineScopeName)
	ops, _ := m.Int64Counter("qaueue.engine.operations",
		metric.WithDescription("Total engine operations executed"),
	)
	dur, _ := m.Float64Histogram("qaueue.engine.operation.duration",
		metric.WithDescription("Engine operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	return &Operations{tracer: Tracer(engineScopeName), ops: ops, dur: dur}
}

// Start opens a span named "engine.<name>". The returned func ends it,
// tagging the outcome with queue.ErrorKind of the final error.
func (o *Operations) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	all := append([]attribute.KeyValue{attribute.String("qaueue.operation", name)}, attrs...)
	ctx, span := o.tracer.Start(ctx, "engine."+name, trace.WithAttributes(all...))
	start := time.Now()
	return ctx, func(err error) {
		outcome := "ok"
		if err != nil {
			outcome = queue.ErrorKind(err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		tagged := metric.WithAttributes(
			attribute.String("qaueue.operation", name),
			attribute.String("qaueue.outcome", outcome),
		)
		o.ops.Add(ctx, 1, tagged)
		o.dur.Record(ctx, float64(time.Since(start).Microseconds())/1000, tagged)
		span.End()
	}
}
