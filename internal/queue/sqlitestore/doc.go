// Package sqlitestore implements queue.Backend on an embedded SQLite file.
//
// Records live in the items table; the queue is the queue_entries table with
// dense positions. Writers use BEGIN IMMEDIATE so concurrent CLI invocations
// against the same file serialize at the database rather than in process.
package sqlitestore
