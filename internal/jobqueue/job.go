package jobqueue

import "time"

// Job is a user-submitted unit of work: an id and an opaque shell
// command, augmented with the lifecycle and retry fields the worker
// loop and dispatch primitive need.
//
// Job values returned by Inspector are snapshots; mutating them does
// not affect stored state. Transitions happen only through Enqueuer,
// Dispatcher and Retention.
type Job struct {
	ID      string
	Command string

	Status     Status
	Attempts   uint32
	MaxRetries uint32

	RunAt      time.Time
	EnqueuedAt time.Time

	LastError *string
	ExitCode  *int
}
