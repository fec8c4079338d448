// Package jobqueue defines the storage-agnostic job model and the
// narrow interfaces the rest of queuectl consumes: Enqueuer, Dispatcher,
// Inspector and Retention. It separates queue semantics from the bun/
// sqlite implementation in internal/store, the same split gqs draws
// between its root package and its sql backend.
package jobqueue
