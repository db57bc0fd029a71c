package domain

import (
	"context"
	"time"
)

// FactoryPort materializes the daily job document
type FactoryPort interface {
	// EnsureJob returns the job for date, creating it if absent.
	// The bool reports whether a new job was created
	EnsureJob(ctx context.Context, date string) (Job, bool, error)
}

// QueryPort reads jobs and their audit trail
type QueryPort interface {
	Get(ctx context.Context, date string) (Job, error)
	List(ctx context.Context, from, to string) ([]Job, error)
	Actions(ctx context.Context, date string, limit int) ([]ActionLog, error)
}

// RecorderPort persists job state transitions and audit entries for the
// pipeline. Save writes the whole job document back
type RecorderPort interface {
	Save(ctx context.Context, job Job) error
	RecordAction(ctx context.Context, rec ActionLog) error
	ListRetryable(ctx context.Context, maxRetries int) ([]Job, error)
}

// PurgePort removes aged records; used by retention. Each collection has
// its own cutoff; a zero cutoff leaves that collection untouched
type PurgePort interface {
	CountBefore(ctx context.Context, jobCutoff, actionCutoff time.Time) (jobs, actions int64, err error)
	PurgeBefore(ctx context.Context, jobCutoff, actionCutoff time.Time) (jobs, actions int64, err error)
}
