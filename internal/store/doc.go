// Package store provides the bun/sqlite-backed implementation of
// jobqueue.Store.
//
// # Overview
//
// The store holds the entire authoritative state of queuectl: jobs and
// their lifecycle fields, plus the flat config key/value map. All
// mutation goes through the small set of methods on Store; there is no
// other path to the jobs or config tables.
//
// # Concurrency Model
//
// FetchJobAtomically is implemented as a single UPDATE ... WHERE id IN
// (subquery) ... RETURNING statement, so selection and state
// transition happen inside one SQL statement with no read-then-write
// gap for a second process to race into, the same pattern gqs's
// sql.Puller.Pull uses.
//
// SQLite is opened in WAL mode with a busy_timeout pragma so concurrent
// readers (status, list) never block on the single writer, and a
// second writer blocks (up to busy_timeout) rather than failing
// immediately. Store.db.SetMaxOpenConns(1) serializes writers within
// this process; cross-process serialization is provided by SQLite's
// own file locking.
//
// # Schema
//
// Initialize creates the jobs table, its (status, run_at) and
// (status, enqueued_at) indexes, and the config table, all inside one
// transaction. Initialize is idempotent and performs no destructive
// migration.
package store
