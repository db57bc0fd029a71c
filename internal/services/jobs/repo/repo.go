// Package repo provides the jobs repository implementation.
package repo

import (
	"context"
	"encoding/json"
	"time"

	"logvault/internal/modkit/repokit"
	perr "logvault/internal/platform/errors"
	"logvault/internal/platform/store"
	"logvault/internal/services/jobs/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the jobs repository. Jobs are read and written as whole
// documents; the hours array lives in a single jsonb column
type Storage interface {
	Get(ctx context.Context, date string) (domain.Job, error)
	Create(ctx context.Context, job domain.Job) error
	Update(ctx context.Context, job domain.Job) error
	List(ctx context.Context, from, to string) ([]domain.Job, error)
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Job, error)
	AppendAction(ctx context.Context, rec domain.ActionLog) error
	ListActions(ctx context.Context, date string, limit int) ([]domain.ActionLog, error)
	CountJobsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountActionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteJobsBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteActionsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

const jobCols = `date, status::text, hours, created_at`

func scanJob(r store.Row) (domain.Job, error) {
	var (
		j     domain.Job
		hours []byte
	)
	if err := r.Scan(&j.Date, &j.Status, &hours, &j.CreatedAt); err != nil {
		return domain.Job{}, err
	}
	if err := json.Unmarshal(hours, &j.Hours); err != nil {
		return domain.Job{}, perr.Wrapf(err, perr.ErrorCodeJSON, "decode hours for job %s", j.Date)
	}
	return j, nil
}

// Get implements Storage
func (s *pg) Get(ctx context.Context, date string) (domain.Job, error) {
	j, err := store.One(ctx, s.q, scanJob,
		`SELECT `+jobCols+` FROM jobs WHERE date = $1`, date)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.Job{}, perr.NotFoundf("job %s not found", date)
		}
		return domain.Job{}, perr.FromPostgresf(err, "get job %s", date)
	}
	return j, nil
}

// Create implements Storage
func (s *pg) Create(ctx context.Context, job domain.Job) error {
	hours, err := json.Marshal(job.Hours)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "encode hours for job %s", job.Date)
	}
	_, err = s.q.Exec(ctx, `
		INSERT INTO jobs (date, status, hours, created_at)
		VALUES ($1, $2, $3::jsonb, $4)`,
		job.Date, string(job.Status), hours, job.CreatedAt,
	)
	if err != nil {
		return perr.FromPostgresf(err, "create job %s", job.Date)
	}
	return nil
}

// Update implements Storage; replaces status and the whole hours document
func (s *pg) Update(ctx context.Context, job domain.Job) error {
	hours, err := json.Marshal(job.Hours)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "encode hours for job %s", job.Date)
	}
	tag, err := s.q.Exec(ctx, `
		UPDATE jobs SET status = $2, hours = $3::jsonb WHERE date = $1`,
		job.Date, string(job.Status), hours,
	)
	if err != nil {
		return perr.FromPostgresf(err, "update job %s", job.Date)
	}
	if tag.RowsAffected() == 0 {
		return perr.NotFoundf("job %s not found", job.Date)
	}
	return nil
}

// List implements Storage; from and to are inclusive date keys
func (s *pg) List(ctx context.Context, from, to string) ([]domain.Job, error) {
	out, err := store.Many(ctx, s.q, scanJob, `
		SELECT `+jobCols+` FROM jobs
		WHERE date >= $1 AND date <= $2
		ORDER BY date`, from, to)
	if err != nil {
		return nil, perr.FromPostgres(err, "list jobs")
	}
	return out, nil
}

// ListByStatus implements Storage
func (s *pg) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Job, error) {
	out, err := store.Many(ctx, s.q, scanJob, `
		SELECT `+jobCols+` FROM jobs WHERE status = $1 ORDER BY date`, string(status))
	if err != nil {
		return nil, perr.FromPostgres(err, "list jobs by status")
	}
	return out, nil
}

// AppendAction implements Storage
func (s *pg) AppendAction(ctx context.Context, rec domain.ActionLog) error {
	_, err := s.q.Exec(ctx, `
		INSERT INTO action_logs (id, job_date, hour_range, action, error_message, duration_ms, created_at)
		VALUES ($1::uuid, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.JobDate, rec.HourRange, string(rec.Action), rec.ErrorMessage, rec.DurationMS, rec.CreatedAt,
	)
	if err != nil {
		return perr.FromPostgresf(err, "append action for job %s", rec.JobDate)
	}
	return nil
}

func scanAction(r store.Row) (domain.ActionLog, error) {
	var a domain.ActionLog
	err := r.Scan(&a.ID, &a.JobDate, &a.HourRange, &a.Action, &a.ErrorMessage, &a.DurationMS, &a.CreatedAt)
	return a, err
}

// ListActions implements Storage; newest first
func (s *pg) ListActions(ctx context.Context, date string, limit int) ([]domain.ActionLog, error) {
	out, err := store.Many(ctx, s.q, scanAction, `
		SELECT id::text, job_date, hour_range, action::text, error_message, duration_ms, created_at
		FROM action_logs
		WHERE job_date = $1
		ORDER BY created_at DESC
		LIMIT $2`, date, limit)
	if err != nil {
		return nil, perr.FromPostgresf(err, "list actions for job %s", date)
	}
	return out, nil
}

// CountJobsBefore implements Storage
func (s *pg) CountJobsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := store.Scalar[int64](ctx, s.q,
		`SELECT COUNT(*) FROM jobs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, perr.FromPostgres(err, "count jobs before cutoff")
	}
	return n, nil
}

// CountActionsBefore implements Storage
func (s *pg) CountActionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := store.Scalar[int64](ctx, s.q,
		`SELECT COUNT(*) FROM action_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, perr.FromPostgres(err, "count actions before cutoff")
	}
	return n, nil
}

// DeleteJobsBefore implements Storage
func (s *pg) DeleteJobsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.q.Exec(ctx, `DELETE FROM jobs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, perr.FromPostgres(err, "delete jobs before cutoff")
	}
	return tag.RowsAffected(), nil
}

// DeleteActionsBefore implements Storage
func (s *pg) DeleteActionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.q.Exec(ctx, `DELETE FROM action_logs WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, perr.FromPostgres(err, "delete actions before cutoff")
	}
	return tag.RowsAffected(), nil
}
