// Package queue defines the item records and the ordered pending queue that
// qaueue tracks, independent of where they are stored.
//
// Records covers the lifecycle of a single item (create, fetch by id, URL or
// position, update, status change, remove). Sequence covers the ordering:
// snapshot, locate, append-if-absent, remove and move-to-index. Both delegate
// to a Backend, which executes every read-modify-write as one transaction so
// concurrent callers never observe duplicates or a half-finished move.
//
// Backends live in the sqlitestore and redisstore subpackages. The move
// placement rule is implemented once in PlanMove for stores that reorder in
// Go; script-based stores must reproduce it exactly.
//
// Errors are sentinels matched with errors.Is. Any failure talking to the
// store is wrapped with ErrStoreUnavailable.
package queue
