// Package worker implements the worker loop and retry state machine:
// acquire-one-job -> execute -> settle (complete/retry/dead) ->
// idle-sleep, with graceful shutdown that finishes an in-flight job
// before exiting.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/queuectl/queuectl/internal/jobqueue"
)

// idleSleep is how long the worker waits between dispatch misses. It
// is interruptible by shutdown.
const idleSleep = time.Second

// Worker runs the acquire/execute/settle/idle-sleep loop described in
// spec section 4.3 inside a single goroutine. It has no internal
// concurrency: the fleet's parallelism comes entirely from running
// multiple Worker processes against the same store.
type Worker struct {
	lcBase

	store jobqueue.Store
	log   *slog.Logger

	shutdown chan struct{}
	done     chan struct{}
}

// New creates a Worker bound to store. It is not started automatically;
// call Run.
func New(store jobqueue.Store, log *slog.Logger) *Worker {
	return &Worker{
		store:    store,
		log:      log,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Run executes the worker loop until Shutdown is called or ctx is
// canceled. It returns ErrDoubleStarted if already running.
//
// On a shutdown request, Run finishes any job currently executing,
// settles it, and returns promptly; it never abandons an in-flight
// command.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.tryStart(); err != nil {
		return err
	}
	defer close(w.done)

	for {
		select {
		case <-w.shutdown:
			return nil
		case <-ctx.Done():
			return nil
		default:
		}

		job, err := w.store.FetchJobAtomically(ctx, time.Now().UTC())
		if err != nil {
			if errors.Is(err, jobqueue.ErrStoreBusy) {
				// The store already retried this internally up to its
				// own bounded budget; seeing ErrStoreBusy here means
				// that budget was exhausted, which points at a stuck
				// lock rather than ordinary contention.
				w.log.Warn("store busy, retry budget exceeded", "err", err)
			} else {
				w.log.Error("dispatch failed", "err", err)
			}
			if !w.sleep(ctx, idleSleep) {
				return nil
			}
			continue
		}
		if job == nil {
			if !w.sleep(ctx, idleSleep) {
				return nil
			}
			continue
		}

		w.log.Info("executing job", "id", job.ID, "attempt", job.Attempts)
		w.settle(ctx, job)
	}
}

// settle runs job.Command and applies the retry FSM to its outcome.
func (w *Worker) settle(ctx context.Context, job *jobqueue.Job) {
	result := runCommand(job.Command)

	if result.exitCode == 0 {
		if err := w.store.MarkCompleted(ctx, job.ID, result.exitCode); err != nil {
			w.log.Error("cannot mark completed", "id", job.ID, "err", err)
		}
		return
	}

	maxRetries := job.MaxRetries
	if job.Attempts > maxRetries {
		if err := w.store.MarkDead(ctx, job.ID, result.lastErr, result.exitCode); err != nil {
			w.log.Error("cannot mark dead", "id", job.ID, "err", err)
		}
		return
	}

	backoffBase := w.readBackoffBase(ctx)
	delay := backoffCounter{base: backoffBase}.delay(job.Attempts)
	runAt := time.Now().UTC().Add(delay)
	if err := w.store.ScheduleRetry(ctx, job.ID, job.Attempts, runAt, result.lastErr, result.exitCode); err != nil {
		w.log.Error("cannot schedule retry", "id", job.ID, "err", err)
	}
}

func (w *Worker) readBackoffBase(ctx context.Context) uint32 {
	value, ok, err := w.store.ConfigGet(ctx, jobqueue.ConfigBackoffBase)
	if err != nil || !ok {
		return jobqueue.DefaultBackoffBase
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return jobqueue.DefaultBackoffBase
	}
	return uint32(n)
}

// sleep waits for idleSleep, returning false if shutdown was requested
// in the meantime.
func (w *Worker) sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-w.shutdown:
		return false
	case <-ctx.Done():
		return false
	}
}

// Shutdown requests a graceful stop: the current job (if any) finishes
// and is settled, then Run returns. Shutdown does not wait for Run to
// return; use Done for that.
func (w *Worker) Shutdown() error {
	if err := w.tryStop(); err != nil {
		return err
	}
	close(w.shutdown)
	return nil
}

// Done returns a channel closed once Run has returned.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}
