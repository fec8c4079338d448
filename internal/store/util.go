package store

import (
	"database/sql"
	"strings"
	"time"

	"github.com/queuectl/queuectl/internal/jobqueue"
)

func isAffected(res sql.Result) bool {
	rows, err := res.RowsAffected()
	if err != nil {
		return true
	}
	return rows != 0
}

func getAffected(res sql.Result) int64 {
	ret, err := res.RowsAffected()
	if err != nil {
		return -1
	}
	return ret
}

// busyRetryAttempts bounds how many times a write is attempted in total
// (first try included) while it keeps failing with a SQLite busy/locked
// error, before that is surfaced as ErrStoreBusy.
const busyRetryAttempts = 3

// busyRetryBaseDelay is the per-attempt backoff step: attempt N waits
// N*busyRetryBaseDelay before retrying.
const busyRetryBaseDelay = 25 * time.Millisecond

// retryBusy runs fn, retrying it when fn fails with a SQLite
// busy/locked error. Once busyRetryAttempts is exhausted it returns
// jobqueue.ErrStoreBusy instead of the underlying driver error, so a
// stuck lock is reported distinctly from ordinary query failures.
func retryBusy(fn func() error) error {
	var err error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		err = fn()
		if err == nil || !isBusyErr(err) {
			return err
		}
		time.Sleep(busyRetryBaseDelay * time.Duration(attempt+1))
	}
	return jobqueue.ErrStoreBusy
}

// isBusyErr reports whether err is a SQLite contention error.
// modernc.org/sqlite surfaces SQLITE_BUSY/SQLITE_LOCKED as plain errors
// with no typed sentinel, so this matches on the driver's own wording.
func isBusyErr(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "busy") || strings.Contains(msg, "locked")
}
