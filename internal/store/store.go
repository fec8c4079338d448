package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "modernc.org/sqlite"

	"github.com/queuectl/queuectl/internal/jobqueue"
)

// Store is the bun/sqlite-backed implementation of jobqueue.Store.
type Store struct {
	db *bun.DB
}

// Open connects to the sqlite database at path, enabling WAL mode and a
// busy_timeout so concurrent readers never block on the writer and a
// contending writer waits (rather than failing outright) up to the
// timeout. Only one open connection is kept, since sqlite tolerates a
// single writer and serializing writers in-process avoids SQLITE_BUSY
// churn on top of the pragma.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return &Store{db: bun.NewDB(sqlDB, sqlitedialect.New())}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Initialize installs the schema. It is idempotent and safe to call on
// every process start.
func (s *Store) Initialize(ctx context.Context) error {
	return initSchema(ctx, s.db)
}

// CreateJob inserts a Pending job, snapshotting max_retries from the
// current config (or jobqueue.DefaultMaxRetries if unset).
func (s *Store) CreateJob(ctx context.Context, id, command string) (*jobqueue.Job, error) {
	maxRetries, err := s.currentMaxRetries(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	model := &jobModel{
		ID:         id,
		Command:    command,
		Status:     jobqueue.Pending,
		Attempts:   0,
		MaxRetries: maxRetries,
		RunAt:      now,
		EnqueuedAt: now,
	}
	_, err = s.db.NewInsert().Model(model).Exec(ctx)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, jobqueue.ErrDuplicateID
		}
		return nil, err
	}
	return model.toJob(), nil
}

// FetchJobAtomically is the dispatch primitive. See package doc for the
// atomicity argument.
//
// Attempts is incremented as part of the same UPDATE, so the returned
// Job.Attempts is already the 1-indexed number of the attempt the
// caller is about to make; the worker compares it against MaxRetries
// to decide retry-vs-dead without a further increment.
//
// On a SQLite busy/locked error the statement is attempted up to
// busyRetryAttempts times in total before ErrStoreBusy is returned.
func (s *Store) FetchJobAtomically(ctx context.Context, now time.Time) (*jobqueue.Job, error) {
	var job *jobqueue.Job
	err := retryBusy(func() error {
		subQuery := s.db.NewSelect().
			Model((*jobModel)(nil)).
			Column("id").
			Where("status = ?", jobqueue.Pending).
			Where("run_at <= ?", now).
			Order("run_at ASC", "enqueued_at ASC", "id ASC").
			Limit(1)
		var rows []jobModel
		if err := s.db.NewUpdate().
			Model((*jobModel)(nil)).
			Set("status = ?", jobqueue.Processing).
			Set("attempts = attempts + 1").
			Where("id IN (?)", subQuery).
			Returning("*").
			Scan(ctx, &rows); err != nil {
			return err
		}
		if len(rows) > 0 {
			job = rows[0].toJob()
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// MarkCompleted transitions id from Processing to Completed.
func (s *Store) MarkCompleted(ctx context.Context, id string, exitCode int) error {
	return retryBusy(func() error {
		res, err := s.db.NewUpdate().
			Model((*jobModel)(nil)).
			Set("status = ?", jobqueue.Completed).
			Set("exit_code = ?", exitCode).
			Where("id = ?", id).
			Where("status = ?", jobqueue.Processing).
			Exec(ctx)
		if err != nil {
			return err
		}
		if !isAffected(res) {
			return jobqueue.ErrNotProcessing
		}
		return nil
	})
}

// ScheduleRetry transitions id from Processing back to Pending.
func (s *Store) ScheduleRetry(ctx context.Context, id string, attempts uint32, runAt time.Time, lastError string, exitCode int) error {
	return retryBusy(func() error {
		res, err := s.db.NewUpdate().
			Model((*jobModel)(nil)).
			Set("status = ?", jobqueue.Pending).
			Set("attempts = ?", attempts).
			Set("run_at = ?", runAt).
			Set("last_error = ?", truncateError(lastError)).
			Set("exit_code = ?", exitCode).
			Where("id = ?", id).
			Where("status = ?", jobqueue.Processing).
			Exec(ctx)
		if err != nil {
			return err
		}
		if !isAffected(res) {
			return jobqueue.ErrNotProcessing
		}
		return nil
	})
}

// MarkDead transitions id from Processing to Dead.
func (s *Store) MarkDead(ctx context.Context, id string, lastError string, exitCode int) error {
	return retryBusy(func() error {
		res, err := s.db.NewUpdate().
			Model((*jobModel)(nil)).
			Set("status = ?", jobqueue.Dead).
			Set("last_error = ?", truncateError(lastError)).
			Set("exit_code = ?", exitCode).
			Where("id = ?", id).
			Where("status = ?", jobqueue.Processing).
			Exec(ctx)
		if err != nil {
			return err
		}
		if !isAffected(res) {
			return jobqueue.ErrNotProcessing
		}
		return nil
	})
}

// Get returns the job identified by id.
func (s *Store) Get(ctx context.Context, id string) (*jobqueue.Job, error) {
	var m jobModel
	err := s.db.NewSelect().Model(&m).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, jobqueue.ErrJobNotFound
		}
		return nil, err
	}
	return m.toJob(), nil
}

// ListByState returns jobs in status, ordered by EnqueuedAt ascending.
func (s *Store) ListByState(ctx context.Context, status jobqueue.Status) ([]*jobqueue.Job, error) {
	var rows []jobModel
	query := s.db.NewSelect().Model(&rows).Order("enqueued_at ASC")
	if status != jobqueue.Unknown {
		query = query.Where("status = ?", status)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	ret := make([]*jobqueue.Job, len(rows))
	for i := range rows {
		ret[i] = rows[i].toJob()
	}
	return ret, nil
}

// Summary returns a count of jobs per state.
func (s *Store) Summary(ctx context.Context) (map[jobqueue.Status]int64, error) {
	var rows []struct {
		Status jobqueue.Status `bun:"status"`
		Count  int64           `bun:"count"`
	}
	err := s.db.NewSelect().
		Model((*jobModel)(nil)).
		ColumnExpr("status").
		ColumnExpr("count(*) AS count").
		GroupExpr("status").
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}
	ret := make(map[jobqueue.Status]int64, len(rows))
	for _, r := range rows {
		ret[r.Status] = r.Count
	}
	return ret, nil
}

// DlqRequeue resets a Dead job to Pending with a fresh retry budget.
func (s *Store) DlqRequeue(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res, err := s.db.NewUpdate().
		Model((*jobModel)(nil)).
		Set("status = ?", jobqueue.Pending).
		Set("attempts = ?", 0).
		Set("run_at = ?", now).
		Set("last_error = NULL").
		Set("exit_code = NULL").
		Where("id = ?", id).
		Where("status = ?", jobqueue.Dead).
		Exec(ctx)
	if err != nil {
		return err
	}
	if !isAffected(res) {
		return jobqueue.ErrNotDead
	}
	return nil
}

// ConfigGet returns the current value of key.
func (s *Store) ConfigGet(ctx context.Context, key string) (string, bool, error) {
	var m configModel
	err := s.db.NewSelect().Model(&m).Where("key = ?", key).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return m.Value, true, nil
}

// ConfigSet validates and persists key=value.
func (s *Store) ConfigSet(ctx context.Context, key, value string) error {
	if !jobqueue.IsRecognizedConfigKey(key) {
		return jobqueue.ErrUnknownConfigKey
	}
	if err := validateConfigValue(key, value); err != nil {
		return err
	}
	_, err := s.db.NewInsert().
		Model(&configModel{Key: key, Value: value}).
		On("CONFLICT (key) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return err
}

// ListStuck returns Processing jobs whose run_at is at least olderThan
// in the past. Dispatch time is not recorded, so the age is measured
// from the job's scheduled run time, not from when processing began.
// It is a deliberate, unwired extension point for an
// operator recovery tool; the core worker/dispatch path never calls
// it, since the core spec accepts orphaned processing rows as a known
// weakness rather than silently reaping them.
func (s *Store) ListStuck(ctx context.Context, olderThan time.Duration) ([]*jobqueue.Job, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	var rows []jobModel
	err := s.db.NewSelect().
		Model(&rows).
		Where("status = ?", jobqueue.Processing).
		Where("run_at <= ?", cutoff).
		Order("run_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	ret := make([]*jobqueue.Job, len(rows))
	for i := range rows {
		ret[i] = rows[i].toJob()
	}
	return ret, nil
}

func (s *Store) currentMaxRetries(ctx context.Context) (uint32, error) {
	value, ok, err := s.ConfigGet(ctx, jobqueue.ConfigMaxRetries)
	if err != nil {
		return 0, err
	}
	if !ok {
		return jobqueue.DefaultMaxRetries, nil
	}
	n, err := strconv.ParseUint(value, 10, 32)
	if err != nil {
		return jobqueue.DefaultMaxRetries, nil
	}
	return uint32(n), nil
}

func validateConfigValue(key, value string) error {
	switch key {
	case jobqueue.ConfigMaxRetries:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 0 {
			return jobqueue.ErrInvalidConfigValue
		}
	case jobqueue.ConfigBackoffBase:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n < 1 {
			return jobqueue.ErrInvalidConfigValue
		}
	}
	return nil
}

func truncateError(s string) *string {
	const maxLastError = 4096
	if len(s) > maxLastError {
		s = s[:maxLastError]
	}
	return &s
}

func isUniqueViolation(err error) bool {
	// modernc.org/sqlite reports constraint violations as plain errors
	// whose text names the constraint; there is no typed sentinel to
	// compare against.
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "constraint")
}
