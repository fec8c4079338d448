package store

import (
	"errors"
	"testing"

	"github.com/queuectl/queuectl/internal/jobqueue"
)

func TestIsBusyErr(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("SQLITE_BUSY: database is locked"), true},
		{errors.New("database table is locked"), true},
		{errors.New("UNIQUE constraint failed: jobs.id"), false},
		{jobqueue.ErrNotProcessing, false},
	}
	for _, tc := range cases {
		if got := isBusyErr(tc.err); got != tc.want {
			t.Errorf("isBusyErr(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestRetryBusySucceedsWithoutRetry(t *testing.T) {
	calls := 0
	err := retryBusy(func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestRetryBusyPassesThroughNonBusyError(t *testing.T) {
	calls := 0
	err := retryBusy(func() error {
		calls++
		return jobqueue.ErrNotProcessing
	})
	if !errors.Is(err, jobqueue.ErrNotProcessing) {
		t.Fatalf("expected ErrNotProcessing to pass through unchanged, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected exactly 1 call for a non-busy error, got %d", calls)
	}
}

func TestRetryBusyRecoversWithinBudget(t *testing.T) {
	calls := 0
	err := retryBusy(func() error {
		calls++
		if calls < busyRetryAttempts {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success once the lock clears, got %v", err)
	}
	if calls != busyRetryAttempts {
		t.Fatalf("expected %d calls, got %d", busyRetryAttempts, calls)
	}
}

func TestRetryBusyExhaustsBudget(t *testing.T) {
	calls := 0
	err := retryBusy(func() error {
		calls++
		return errors.New("database is locked")
	})
	if !errors.Is(err, jobqueue.ErrStoreBusy) {
		t.Fatalf("expected ErrStoreBusy once the retry budget is exhausted, got %v", err)
	}
	if calls != busyRetryAttempts {
		t.Fatalf("expected exactly %d attempts, got %d", busyRetryAttempts, calls)
	}
}
