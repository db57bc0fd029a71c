// Package service provides the jobs service implementation
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"logvault/internal/core/hourwindow"
	"logvault/internal/modkit/repokit"
	perr "logvault/internal/platform/errors"
	"logvault/internal/platform/logger"
	"logvault/internal/platform/store"
	"logvault/internal/services/jobs/domain"
	"logvault/internal/services/jobs/repo"
)

// Config for the jobs service
type Config struct {
	// FileExt is the artifact extension used when materializing hour units
	FileExt string
	// ActionListLimit caps audit trail reads
	ActionListLimit int
}

// Service implements the factory, query, recorder, and purge ports
type Service struct {
	DB     repokit.TxRunner
	Binder repokit.Binder[repo.Storage]
	Mirror store.Clickhouse // optional audit mirror, may be nil
	Cfg    Config
}

// New constructs a new jobs service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage], mirror store.Clickhouse, cfg Config) *Service {
	if cfg.FileExt == "" {
		cfg.FileExt = "json"
	}
	if cfg.ActionListLimit <= 0 {
		cfg.ActionListLimit = 500
	}
	return &Service{DB: db, Binder: binder, Mirror: mirror, Cfg: cfg}
}

func (s *Service) storage() repo.Storage { return repokit.MustBind(s.Binder, s.DB) }

// EnsureJob implements domain.FactoryPort. Losing a create race to a
// concurrent caller is not an error; the winner's document is returned
func (s *Service) EnsureJob(ctx context.Context, date string) (domain.Job, bool, error) {
	if _, err := hourwindow.ParseDate(date); err != nil {
		return domain.Job{}, false, err
	}

	st := s.storage()
	job, err := st.Get(ctx, date)
	if err == nil {
		return job, false, nil
	}
	if !perr.IsCode(err, perr.ErrorCodeNotFound) {
		return domain.Job{}, false, err
	}

	job = domain.NewJob(date, func(hr string) string { return hr + "." + s.Cfg.FileExt })
	if err := st.Create(ctx, job); err != nil {
		if perr.IsCode(err, perr.ErrorCodeDuplicateKey) {
			job, err = st.Get(ctx, date)
			return job, false, err
		}
		return domain.Job{}, false, err
	}
	logger.C(ctx).Info().Str("date", date).Msg("job created")
	return job, true, nil
}

// Get implements domain.QueryPort
func (s *Service) Get(ctx context.Context, date string) (domain.Job, error) {
	if _, err := hourwindow.ParseDate(date); err != nil {
		return domain.Job{}, err
	}
	return s.storage().Get(ctx, date)
}

// List implements domain.QueryPort; from and to are inclusive
func (s *Service) List(ctx context.Context, from, to string) ([]domain.Job, error) {
	if _, err := hourwindow.ParseDate(from); err != nil {
		return nil, perr.WithField(err, "from")
	}
	if _, err := hourwindow.ParseDate(to); err != nil {
		return nil, perr.WithField(err, "to")
	}
	if from > to {
		return nil, perr.InvalidArgf("from %s is after to %s", from, to)
	}
	return s.storage().List(ctx, from, to)
}

// Actions implements domain.QueryPort
func (s *Service) Actions(ctx context.Context, date string, limit int) ([]domain.ActionLog, error) {
	if _, err := hourwindow.ParseDate(date); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > s.Cfg.ActionListLimit {
		limit = s.Cfg.ActionListLimit
	}
	return s.storage().ListActions(ctx, date, limit)
}

// Save implements domain.RecorderPort; writes the whole document back
func (s *Service) Save(ctx context.Context, job domain.Job) error {
	return s.storage().Update(ctx, job)
}

// RecordAction implements domain.RecorderPort. The row is durable in
// Postgres; the columnar mirror is best effort and never fails the caller
func (s *Service) RecordAction(ctx context.Context, rec domain.ActionLog) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err := s.storage().AppendAction(ctx, rec); err != nil {
		return err
	}
	s.mirror(ctx, rec)
	return nil
}

func (s *Service) mirror(ctx context.Context, rec domain.ActionLog) {
	if s.Mirror == nil {
		return
	}
	err := s.Mirror.Insert(ctx, "action_logs",
		[]string{"id", "job_date", "hour_range", "action", "error_message", "duration_ms", "created_at"},
		[][]any{{rec.ID, rec.JobDate, rec.HourRange, string(rec.Action), rec.ErrorMessage, rec.DurationMS, rec.CreatedAt}},
	)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("date", rec.JobDate).Msg("audit mirror insert failed")
	}
}

// ListRetryable implements domain.RecorderPort: failed jobs that still have
// at least one hour unit under the retry ceiling
func (s *Service) ListRetryable(ctx context.Context, maxRetries int) ([]domain.Job, error) {
	failed, err := s.storage().ListByStatus(ctx, domain.StatusFailed)
	if err != nil {
		return nil, err
	}
	out := failed[:0]
	for _, j := range failed {
		for i := range j.Hours {
			h := &j.Hours[i]
			if h.Status == domain.StatusFailed && h.Retries < maxRetries {
				out = append(out, j)
				break
			}
		}
	}
	return out, nil
}

// CountBefore implements domain.PurgePort; a zero cutoff skips that collection
func (s *Service) CountBefore(ctx context.Context, jobCutoff, actionCutoff time.Time) (int64, int64, error) {
	st := s.storage()
	var jobs, actions int64
	var err error
	if !jobCutoff.IsZero() {
		if jobs, err = st.CountJobsBefore(ctx, jobCutoff); err != nil {
			return 0, 0, err
		}
	}
	if !actionCutoff.IsZero() {
		if actions, err = st.CountActionsBefore(ctx, actionCutoff); err != nil {
			return 0, 0, err
		}
	}
	return jobs, actions, nil
}

// PurgeBefore implements domain.PurgePort; both tables go in one transaction,
// each against its own cutoff, and a zero cutoff skips that collection
func (s *Service) PurgeBefore(ctx context.Context, jobCutoff, actionCutoff time.Time) (int64, int64, error) {
	var jobs, actions int64
	err := repokit.WithTx(ctx, s.DB, func(q repokit.Queryer) error {
		st := s.Binder.Bind(q)
		var err error
		if !jobCutoff.IsZero() {
			if jobs, err = st.DeleteJobsBefore(ctx, jobCutoff); err != nil {
				return err
			}
		}
		if !actionCutoff.IsZero() {
			if actions, err = st.DeleteActionsBefore(ctx, actionCutoff); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	return jobs, actions, nil
}
