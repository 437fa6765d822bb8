package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qaueue/internal/telemetry"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	telemetry.Shutdown(shutdownCtx)
	cancel()

	if err == nil {
		return
	}
	if errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
	format, _ := cmd.PersistentFlags().GetString("output")
	reportError(os.Stdout, os.Stderr, format, err)
	os.Exit(exitCode(err))
}
