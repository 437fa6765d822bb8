// Package telemetry provides OpenTelemetry integration for qaueue.
//
// Telemetry is disabled by default. With [telemetry] enabled = true, spans
// and metrics are pretty-printed to stderr by the stdout exporters.
package telemetry

import (
	"context"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"qaueue/internal/config"
)

const instrumentationScope = "qaueue"

var (
	enabled     atomic.Bool
	shutdownMu  sync.Mutex
	shutdownFns []func(context.Context) error
)

// Enabled reports whether Init installed real providers.
func Enabled() bool {
	return enabled.Load()
}

// Init configures OTel providers. When telemetry is disabled this installs
// no-op providers and returns immediately.
func Init(ctx context.Context, cfg config.Telemetry, version string) error {
	if !cfg.Enabled {
		otel.SetTracerProvider(tracenoop.NewTracerProvider())
		otel.SetMeterProvider(metricnoop.NewMeterProvider())
		enabled.Store(false)
		return nil
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceNameKey.String(cfg.ServiceName),
			semconv.ServiceVersionKey.String(version),
		),
		resource.WithHost(),
		resource.WithProcess(),
	)
	if err != nil {
		return fmt.Errorf("telemetry: resource: %w", err)
	}

	traceExp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("telemetry: trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithBatcher(traceExp),
	)

	metricExp, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr), stdoutmetric.WithPrettyPrint())
	if err != nil {
		_ = tp.Shutdown(ctx)
		return fmt.Errorf("telemetry: metric exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp, sdkmetric.WithInterval(15*time.Second))),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	shutdownMu.Lock()
	shutdownFns = append(shutdownFns, tp.Shutdown, mp.Shutdown)
	shutdownMu.Unlock()
	enabled.Store(true)
	return nil
}

// Tracer returns a tracer with the given instrumentation name (or the global scope).
func Tracer(name string) trace.Tracer {
	if name == "" {
		name = instrumentationScope
	}
	return otel.Tracer(name)
}

// Meter returns a meter with the given instrumentation name (or the global scope).
func Meter(name string) metric.Meter {
	if name == "" {
		name = instrumentationScope
	}
	return otel.Meter(name)
}

// Shutdown flushes spans and metrics. Call it once before the process exits.
func Shutdown(ctx context.Context) {
	shutdownMu.Lock()
	fns := shutdownFns
	shutdownFns = nil
	shutdownMu.Unlock()
	for _, fn := range fns {
		_ = fn(ctx)
	}
	enabled.Store(false)
}
