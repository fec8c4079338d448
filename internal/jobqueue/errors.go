package jobqueue

import "errors"

var (
	// ErrDuplicateID is returned by CreateJob when id already exists.
	ErrDuplicateID = errors.New("jobqueue: duplicate job id")

	// ErrJobNotFound indicates the referenced job does not exist in
	// storage.
	ErrJobNotFound = errors.New("jobqueue: job not found")

	// ErrNotProcessing is returned by MarkCompleted, ScheduleRetry and
	// MarkDead when the target job's prior state was not Processing,
	// i.e. another actor already settled it or it was never dispatched.
	ErrNotProcessing = errors.New("jobqueue: job is not in processing state")

	// ErrNotDead is returned by DlqRequeue when the target job's prior
	// state was not Dead.
	ErrNotDead = errors.New("jobqueue: job is not dead")

	// ErrUnknownConfigKey is returned by ConfigSet for any key outside
	// the recognized set.
	ErrUnknownConfigKey = errors.New("jobqueue: unknown config key")

	// ErrInvalidConfigValue is returned by ConfigSet when value does not
	// parse to the expected numeric form for key.
	ErrInvalidConfigValue = errors.New("jobqueue: invalid config value")

	// ErrStoreBusy is returned when a dispatch or settlement operation
	// could not acquire the store's write lock within its bounded retry
	// budget. It indicates contention severe enough to be worth
	// surfacing rather than silently retrying forever.
	ErrStoreBusy = errors.New("jobqueue: store busy, retry budget exceeded")
)
