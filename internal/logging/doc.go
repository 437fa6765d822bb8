// Package logging assembles the slog loggers used by the engine, the stores,
// and the CLI.
//
// It owns the console and JSON handlers, maps the [logging] config section
// onto them, and exposes context-aware helpers so engine code tags each line
// with the operation, item id, and correlation id carried by requestctx.
// Logs go to stderr (plus an optional file); stdout belongs to command output.
package logging
