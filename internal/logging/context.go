package logging

import (
	"context"
	"log/slog"

	"qaueue/internal/requestctx"
)

const (
	// FieldComponent names the subsystem emitting the line.
	FieldComponent = "component"
	// FieldItemID is the queue item identifier (32 hex characters).
	FieldItemID = "item_id"
	// FieldOperation is the engine operation name.
	FieldOperation = "operation"
	// FieldCorrelationID ties together every line produced by one engine call.
	FieldCorrelationID = "correlation_id"
	FieldEventType     = "event_type"
	FieldErrorHint     = "error_hint"
	FieldError         = "error"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if op, ok := requestctx.OperationFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldOperation, op))
	}
	if id, ok := requestctx.ItemIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldItemID, id))
	}
	if rid, ok := requestctx.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
