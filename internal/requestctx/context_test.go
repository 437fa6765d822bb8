package requestctx_test

import (
	"context"
	"testing"

	"qaueue/internal/requestctx"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = requestctx.WithItemID(ctx, "0a1b")
	ctx = requestctx.WithOperation(ctx, "reprioritize")
	ctx = requestctx.WithRequestID(ctx, "req-123")

	if id, ok := requestctx.ItemIDFromContext(ctx); !ok || id != "0a1b" {
		t.Fatalf("unexpected item id: %v %v", id, ok)
	}
	if op, ok := requestctx.OperationFromContext(ctx); !ok || op != "reprioritize" {
		t.Fatalf("unexpected operation: %v %v", op, ok)
	}
	if rid, ok := requestctx.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = requestctx.WithItemID(ctx, "")
	ctx = requestctx.WithOperation(ctx, "")
	if _, ok := requestctx.ItemIDFromContext(ctx); ok {
		t.Fatal("expected no item id value")
	}
	if _, ok := requestctx.OperationFromContext(ctx); ok {
		t.Fatal("expected no operation value")
	}
}
