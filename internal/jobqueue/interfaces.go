package jobqueue

import (
	"context"
	"time"
)

// Enqueuer is the write-side entry point of the queue.
type Enqueuer interface {
	// CreateJob inserts a new Pending job with Attempts=0, RunAt=now,
	// EnqueuedAt=now and MaxRetries snapshotted from the current
	// max_retries config value.
	//
	// CreateJob returns ErrDuplicateID if id already exists.
	CreateJob(ctx context.Context, id, command string) (*Job, error)
}

// Dispatcher defines the read-write contract for pulling jobs off the
// queue and settling their outcome.
//
// Dispatcher provides at-least-once delivery: FetchJobAtomically hands
// a job to exactly one caller, but a worker that crashes mid-execution
// leaves the row in Processing forever (see package store's ListStuck
// for the accepted, unwired recovery hook).
type Dispatcher interface {
	// FetchJobAtomically selects the single oldest eligible job
	// (Status=Pending, RunAt<=now), atomically transitions it to
	// Processing and returns it. Eligible jobs are ordered by RunAt,
	// then EnqueuedAt, then ID, all ascending, so retries do not starve
	// behind fresh work. Returns (nil, nil) if no job is eligible.
	FetchJobAtomically(ctx context.Context, now time.Time) (*Job, error)

	// MarkCompleted transitions a Processing job to Completed.
	// Requires the job's prior state to be Processing.
	MarkCompleted(ctx context.Context, id string, exitCode int) error

	// ScheduleRetry transitions a Processing job back to Pending with
	// an updated attempt count, run time and failure detail.
	// Requires the job's prior state to be Processing.
	ScheduleRetry(ctx context.Context, id string, attempts uint32, runAt time.Time, lastError string, exitCode int) error

	// MarkDead transitions a Processing job to Dead.
	// Requires the job's prior state to be Processing.
	MarkDead(ctx context.Context, id string, lastError string, exitCode int) error
}

// Inspector provides read-only access to jobs and aggregate counts.
// It never participates in state transitions.
type Inspector interface {
	// Get returns the job identified by id, or ErrJobNotFound.
	Get(ctx context.Context, id string) (*Job, error)

	// ListByState returns jobs in the given state ordered by
	// EnqueuedAt ascending. Unknown returns jobs in any state.
	ListByState(ctx context.Context, status Status) ([]*Job, error)

	// Summary returns a count of jobs per state.
	Summary(ctx context.Context) (map[Status]int64, error)
}

// Retention provides the DLQ re-queue operation.
type Retention interface {
	// DlqRequeue resets a Dead job to Pending with Attempts=0,
	// RunAt=now, and clears LastError/ExitCode. Requires the job's
	// prior state to be Dead.
	DlqRequeue(ctx context.Context, id string) error
}

// ConfigStore provides access to the flat key/value config map.
type ConfigStore interface {
	// ConfigGet returns the current value of key, or ("", false) if
	// unset.
	ConfigGet(ctx context.Context, key string) (string, bool, error)

	// ConfigSet validates and persists key=value. Returns
	// ErrUnknownConfigKey or ErrInvalidConfigValue on validation
	// failure.
	ConfigSet(ctx context.Context, key, value string) error
}

// Store is the full persistence-layer contract consumed by the CLI and
// worker. It composes the narrower interfaces so callers can depend on
// just the slice they need.
type Store interface {
	Enqueuer
	Dispatcher
	Inspector
	Retention
	ConfigStore
}
