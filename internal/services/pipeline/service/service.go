// Package service implements the harvest pipeline: fetch, mask, write, upload
package service

import (
	"context"
	"os"
	"time"

	"logvault/internal/adapters/source"
	"logvault/internal/adapters/storage"
	"logvault/internal/core/artifact"
	"logvault/internal/core/hourwindow"
	"logvault/internal/core/masking"
	perr "logvault/internal/platform/errors"
	"logvault/internal/platform/logger"
	jobsdom "logvault/internal/services/jobs/domain"
)

// Config for the pipeline service
type Config struct {
	// MaxRetries is the per-hour retry ceiling; a unit at the ceiling is
	// never attempted again
	MaxRetries int
	// Location anchors "previous hour" resolution
	Location *time.Location
}

// Service implements domain.RunnerPort
type Service struct {
	Factory  jobsdom.FactoryPort
	Query    jobsdom.QueryPort
	Recorder jobsdom.RecorderPort
	Fetch    source.Fetcher
	Mask     *masking.Masker
	Writer   *artifact.Writer
	Store    storage.Backend
	Cfg      Config
}

// New constructs a new pipeline service
func New(
	factory jobsdom.FactoryPort,
	query jobsdom.QueryPort,
	recorder jobsdom.RecorderPort,
	fetch source.Fetcher,
	mask *masking.Masker,
	writer *artifact.Writer,
	store storage.Backend,
	cfg Config,
) *Service {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &Service{
		Factory: factory, Query: query, Recorder: recorder,
		Fetch: fetch, Mask: mask, Writer: writer, Store: store, Cfg: cfg,
	}
}

// RunPrevious implements domain.RunnerPort; the daily job is materialized
// on first touch so a scheduler restart never leaves a gap. Hours already
// harvested or past the retry ceiling are skipped without error so the
// tick never trips over old state
func (s *Service) RunPrevious(ctx context.Context) error {
	date, slot := hourwindow.Previous(time.Now(), s.Cfg.Location)
	job, _, err := s.Factory.EnsureJob(ctx, date)
	if err != nil {
		return err
	}
	h := job.Hour(slot)
	ctx = logger.WithJob(ctx, date, h.HourRange)
	if h.Status == jobsdom.StatusSuccess {
		logger.C(ctx).Debug().Msg("hour already harvested")
		return nil
	}
	if h.Status == jobsdom.StatusFailed && h.Retries >= s.Cfg.MaxRetries {
		logger.C(ctx).Warn().Int("retries", h.Retries).Msg("retry budget exhausted, leaving to manual reset")
		return nil
	}
	return s.processHour(ctx, &job, slot)
}

// RunAt implements domain.RunnerPort. The job must already exist; hours
// that succeeded or exhausted their retries are refused
func (s *Service) RunAt(ctx context.Context, date string, slot int) error {
	if _, err := hourwindow.Range(slot); err != nil {
		return err
	}
	job, err := s.Query.Get(ctx, date)
	if err != nil {
		return err
	}
	h := job.Hour(slot)
	if h.Status == jobsdom.StatusSuccess {
		return perr.Conflictf("hour %s of %s already harvested", h.HourRange, date)
	}
	if h.Status == jobsdom.StatusFailed && h.Retries >= s.Cfg.MaxRetries {
		return perr.RetryExhaustedf("hour %s of %s exhausted %d retries", h.HourRange, date, h.Retries)
	}
	return s.processHour(ctx, &job, slot)
}

// Sweep implements domain.RunnerPort. Each retryable unit is attempted
// once; individual failures are recorded on the unit and do not stop the pass
func (s *Service) Sweep(ctx context.Context) error {
	jobs, err := s.Recorder.ListRetryable(ctx, s.Cfg.MaxRetries)
	if err != nil {
		return err
	}
	for i := range jobs {
		job := jobs[i]
		for slot := range job.Hours {
			h := job.Hour(slot)
			if h.Status != jobsdom.StatusFailed || h.Retries >= s.Cfg.MaxRetries {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// a failed attempt is recorded on the unit; keep sweeping
			_ = s.processHour(ctx, &job, slot)
		}
	}
	return nil
}

func (s *Service) processHour(ctx context.Context, job *jobsdom.Job, slot int) error {
	h := job.Hour(slot)
	if h == nil {
		return perr.InvalidArgf("hour slot %d out of range", slot)
	}
	ctx = logger.WithJob(ctx, job.Date, h.HourRange)
	wasRetry := h.Retries > 0
	started := time.Now()

	records, err := s.Fetch.Fetch(ctx, job.Date, h.HourRange)
	if err != nil {
		return s.fail(ctx, job, h, wasRetry, started, err)
	}
	records = s.Mask.Records(records)

	res, err := s.Writer.Write(job.Date, h.HourRange, string(jobsdom.StatusSuccess), records)
	if err != nil {
		return s.fail(ctx, job, h, wasRetry, started, err)
	}

	ref, err := s.Store.Upload(ctx, res.LocalPath, res.Key)
	if err != nil {
		return s.fail(ctx, job, h, wasRetry, started, err)
	}
	_ = os.Remove(res.LocalPath)

	h.Status = jobsdom.StatusSuccess
	h.FileName = res.FileName
	h.FilePath = ref
	job.Rollup()
	if err := s.Recorder.Save(ctx, *job); err != nil {
		return err
	}

	elapsed := time.Since(started)
	s.record(ctx, job.Date, h.HourRange, wasRetry, elapsed, nil)
	logger.C(ctx).Info().
		Int("records", len(records)).
		Str("ref", ref).
		Dur("elapsed", elapsed).
		Msg("hour harvested")
	return nil
}

// fail marks the unit failed, bumps the retry count, and re-raises cause
func (s *Service) fail(ctx context.Context, job *jobsdom.Job, h *jobsdom.HourUnit, wasRetry bool, started time.Time, cause error) error {
	h.Status = jobsdom.StatusFailed
	h.Retries++
	h.Logs = append(h.Logs, jobsdom.AttemptLog{
		Timestamp: time.Now().UTC(),
		Error:     cause.Error(),
	})
	job.Rollup()
	if err := s.Recorder.Save(ctx, *job); err != nil {
		logger.C(ctx).Error().Err(err).Msg("persist failed hour")
		return err
	}

	s.record(ctx, job.Date, h.HourRange, wasRetry, time.Since(started), cause)
	logger.C(ctx).Error().Err(cause).
		Int("retries", h.Retries).
		Msg("hour harvest failed")
	return cause
}

func (s *Service) record(ctx context.Context, date, hourRange string, wasRetry bool, elapsed time.Duration, cause error) {
	action := jobsdom.ActionSuccess
	msg := ""
	switch {
	case cause == nil && wasRetry:
		action = jobsdom.ActionRetrySuccess
	case cause != nil && wasRetry:
		action = jobsdom.ActionRetryFailed
		msg = cause.Error()
	case cause != nil:
		action = jobsdom.ActionFailed
		msg = cause.Error()
	}
	err := s.Recorder.RecordAction(ctx, jobsdom.ActionLog{
		JobDate:      date,
		HourRange:    hourRange,
		Action:       action,
		ErrorMessage: msg,
		DurationMS:   elapsed.Milliseconds(),
	})
	if err != nil {
		logger.C(ctx).Warn().Err(err).Msg("audit append failed")
	}
}
