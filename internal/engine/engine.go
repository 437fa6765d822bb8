package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"qaueue/internal/config"
	"qaueue/internal/logging"
	"qaueue/internal/queue"
	"qaueue/internal/requestctx"
	"qaueue/internal/telemetry"
)

// Engine is the entry point for every queue operation. It holds no state
// beyond its backend handle; atomicity is delegated to the backend, and no
// call is retried.
type Engine struct {
	backend  queue.Backend
	records  *queue.Records
	sequence *queue.Sequence
	logger   *slog.Logger
	ops      *telemetry.Operations
	timeout  time.Duration
}

// New builds an engine over backend. A nil logger discards output.
func New(backend queue.Backend, cfg *config.Config, logger *slog.Logger) *Engine {
	timeout := time.Duration(0)
	if cfg != nil {
		timeout = cfg.OperationTimeout()
	}
	return &Engine{
		backend:  backend,
		records:  queue.NewRecords(backend),
		sequence: queue.NewSequence(backend),
		logger:   logging.NewComponentLogger(logger, "engine"),
		ops:      telemetry.NewOperations(),
		timeout:  timeout,
	}
}

// Close releases the backend.
func (e *Engine) Close() error {
	if e == nil || e.backend == nil {
		return nil
	}
	return e.backend.Close()
}

// call carries the per-operation context, logger, and completion hooks.
type call struct {
	ctx    context.Context
	logger *slog.Logger
	cancel context.CancelFunc
	finish func(error)
}

func (c *call) end(err error) {
	c.finish(err)
	c.cancel()
}

// begin stamps ctx with a correlation id (unless the caller supplied one),
// the operation name, and the item id, then applies the store timeout.
func (e *Engine) begin(ctx context.Context, operation, itemID string) *call {
	if _, ok := requestctx.RequestIDFromContext(ctx); !ok {
		ctx = requestctx.WithRequestID(ctx, uuid.NewString())
	}
	ctx = requestctx.WithOperation(ctx, operation)
	ctx = requestctx.WithItemID(ctx, itemID)

	cancel := context.CancelFunc(func() {})
	if e.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
	}
	ctx, finish := e.ops.Start(ctx, operation)
	return &call{
		ctx:    ctx,
		logger: logging.WithContext(ctx, e.logger),
		cancel: cancel,
		finish: finish,
	}
}
