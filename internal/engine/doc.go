// Package engine is the public contract of qaueue: add, fetch, list,
// update, reprioritize, change status, and remove items.
//
// An Engine is built over an explicit queue.Backend and config; there is no
// process-wide store handle. Each call runs with its own correlation id and
// telemetry span, and store failures surface as queue.ErrStoreUnavailable
// without retry.
package engine
