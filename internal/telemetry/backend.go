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

const storeScopeName = "qaueue/store"

// InstrumentedBackend wraps a queue.Backend with a client span and
// qaueue.store.* metrics per call. Use WrapBackend to create one.
type InstrumentedBackend struct {
	inner  queue.Backend
	system string
	tracer trace.Tracer
	ops    metric.Int64Counter
	dur    metric.Float64Histogram
	errs   metric.Int64Counter
}

var _ queue.Backend = (*InstrumentedBackend)(nil)

// WrapBackend returns b decorated with OTel instrumentation. When telemetry
// is disabled, b is returned as-is.
func WrapBackend(b queue.Backend, system string) queue.Backend {
	if !Enabled() {
		return b
	}
	m := Meter(storeScopeName)
	ops, _ := m.Int64Counter("qaueue.store.operations",
		metric.WithDescription("Total store operations executed"),
	)
	dur, _ := m.Float64Histogram("qaueue.store.operation.duration",
		metric.WithDescription("Store operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	errs, _ := m.Int64Counter("qaueue.store.errors",
		metric.WithDescription("Total store operation errors"),
	)
	return &InstrumentedBackend{
		inner:  b,
		system: system,
		tracer: Tracer(storeScopeName),
		ops:    ops,
		dur:    dur,
		errs:   errs,
	}
}

func (b *InstrumentedBackend) op(ctx context.Context, name string) (context.Context, trace.Span, time.Time) {
	attrs := []attribute.KeyValue{
		attribute.String("db.system", b.system),
		attribute.String("db.operation", name),
	}
	ctx, span := b.tracer.Start(ctx, "store."+name,
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
	b.ops.Add(ctx, 1, metric.WithAttributes(attrs...))
	return ctx, span, time.Now()
}

func (b *InstrumentedBackend) done(ctx context.Context, span trace.Span, start time.Time, name string, err error) {
	attrs := metric.WithAttributes(
		attribute.String("db.system", b.system),
		attribute.String("db.operation", name),
	)
	b.dur.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		b.errs.Add(ctx, 1, attrs)
	}
	span.End()
}

func (b *InstrumentedBackend) ItemExists(ctx context.Context, id string) (bool, error) {
	ctx, span, start := b.op(ctx, "item_exists")
	ok, err := b.inner.ItemExists(ctx, id)
	b.done(ctx, span, start, "item_exists", err)
	return ok, err
}

func (b *InstrumentedBackend) LoadItem(ctx context.Context, id string) (*queue.Item, error) {
	ctx, span, start := b.op(ctx, "load_item")
	item, err := b.inner.LoadItem(ctx, id)
	b.done(ctx, span, start, "load_item", err)
	return item, err
}

func (b *InstrumentedBackend) InsertItem(ctx context.Context, item *queue.Item) (int, error) {
	ctx, span, start := b.op(ctx, "insert_item")
	position, err := b.inner.InsertItem(ctx, item)
	b.done(ctx, span, start, "insert_item", err)
	return position, err
}

func (b *InstrumentedBackend) MergeItem(ctx context.Context, item *queue.Item) error {
	ctx, span, start := b.op(ctx, "merge_item")
	err := b.inner.MergeItem(ctx, item)
	b.done(ctx, span, start, "merge_item", err)
	return err
}

func (b *InstrumentedBackend) DeleteItem(ctx context.Context, id string) (bool, error) {
	ctx, span, start := b.op(ctx, "delete_item")
	ok, err := b.inner.DeleteItem(ctx, id)
	b.done(ctx, span, start, "delete_item", err)
	return ok, err
}

func (b *InstrumentedBackend) SetStatus(ctx context.Context, id string, status queue.Status, releasedAt *time.Time, dequeue bool) error {
	ctx, span, start := b.op(ctx, "set_status")
	err := b.inner.SetStatus(ctx, id, status, releasedAt, dequeue)
	b.done(ctx, span, start, "set_status", err)
	return err
}

func (b *InstrumentedBackend) CountByStatus(ctx context.Context) (map[queue.Status]int, error) {
	ctx, span, start := b.op(ctx, "count_by_status")
	counts, err := b.inner.CountByStatus(ctx)
	b.done(ctx, span, start, "count_by_status", err)
	return counts, err
}

func (b *InstrumentedBackend) Snapshot(ctx context.Context) ([]string, error) {
	ctx, span, start := b.op(ctx, "snapshot")
	order, err := b.inner.Snapshot(ctx)
	b.done(ctx, span, start, "snapshot", err)
	return order, err
}

func (b *InstrumentedBackend) PendingItems(ctx context.Context) ([]queue.QueuedEntry, error) {
	ctx, span, start := b.op(ctx, "pending_items")
	entries, err := b.inner.PendingItems(ctx)
	b.done(ctx, span, start, "pending_items", err)
	return entries, err
}

func (b *InstrumentedBackend) IndexOf(ctx context.Context, id string) (int, bool, error) {
	ctx, span, start := b.op(ctx, "index_of")
	position, ok, err := b.inner.IndexOf(ctx, id)
	b.done(ctx, span, start, "index_of", err)
	return position, ok, err
}

func (b *InstrumentedBackend) At(ctx context.Context, index int) (string, bool, error) {
	ctx, span, start := b.op(ctx, "at")
	id, ok, err := b.inner.At(ctx, index)
	b.done(ctx, span, start, "at", err)
	return id, ok, err
}

func (b *InstrumentedBackend) AppendIfAbsent(ctx context.Context, id string) (int, error) {
	ctx, span, start := b.op(ctx, "append")
	position, err := b.inner.AppendIfAbsent(ctx, id)
	b.done(ctx, span, start, "append", err)
	return position, err
}

func (b *InstrumentedBackend) Dequeue(ctx context.Context, id string) error {
	ctx, span, start := b.op(ctx, "dequeue")
	err := b.inner.Dequeue(ctx, id)
	b.done(ctx, span, start, "dequeue", err)
	return err
}

func (b *InstrumentedBackend) Move(ctx context.Context, req queue.MoveRequest) error {
	ctx, span, start := b.op(ctx, "move")
	span.SetAttributes(attribute.Int("qaueue.target", req.Target), attribute.Bool("qaueue.force", req.Force))
	err := b.inner.Move(ctx, req)
	b.done(ctx, span, start, "move", err)
	return err
}

func (b *InstrumentedBackend) Health(ctx context.Context) (queue.Health, error) {
	ctx, span, start := b.op(ctx, "health")
	health, err := b.inner.Health(ctx)
	b.done(ctx, span, start, "health", err)
	return health, err
}

func (b *InstrumentedBackend) Close() error {
	return b.inner.Close()
}
