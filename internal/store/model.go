package store

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/queuectl/queuectl/internal/jobqueue"
)

type jobModel struct {
	bun.BaseModel `bun:"table:jobs"`

	ID      string `bun:"id,pk"`
	Command string `bun:"command,notnull"`

	Status     jobqueue.Status `bun:"status,notnull,default:1"`
	Attempts   uint32          `bun:"attempts,notnull,default:0"`
	MaxRetries uint32          `bun:"max_retries,notnull,default:0"`

	RunAt      time.Time `bun:"run_at,notnull"`
	EnqueuedAt time.Time `bun:"enqueued_at,notnull"`

	LastError *string `bun:"last_error,nullzero"`
	ExitCode  *int    `bun:"exit_code,nullzero"`
}

func (m *jobModel) toJob() *jobqueue.Job {
	return &jobqueue.Job{
		ID:         m.ID,
		Command:    m.Command,
		Status:     m.Status,
		Attempts:   m.Attempts,
		MaxRetries: m.MaxRetries,
		RunAt:      m.RunAt,
		EnqueuedAt: m.EnqueuedAt,
		LastError:  m.LastError,
		ExitCode:   m.ExitCode,
	}
}

type configModel struct {
	bun.BaseModel `bun:"table:config"`

	Key   string `bun:"key,pk"`
	Value string `bun:"value,notnull"`
}
