// Package scheduler drives the harvest cadence with cron expressions
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"logvault/internal/core/hourwindow"
	"logvault/internal/platform/config"
	perr "logvault/internal/platform/errors"
	"logvault/internal/platform/logger"
	jobsdom "logvault/internal/services/jobs/domain"
	pipedom "logvault/internal/services/pipeline/domain"
	retdom "logvault/internal/services/retention/domain"
)

// Options are the cron expressions and timezone for the schedule
type Options struct {
	Timezone      string
	FactoryCron   string // materializes today's job document
	HarvestCron   string // harvests the previous hour
	SweepCron     string // retries failed hour units
	RecordsCron   string // ages out job and audit rows
	ArtifactsCron string // ages out stored artifacts
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	sf := cfg.Prefix("CORE_SCHEDULE_")
	return Options{
		Timezone:      sf.MayString("TIMEZONE", "UTC"),
		FactoryCron:   sf.MayString("FACTORY_CRON", "0 0 * * *"),
		HarvestCron:   sf.MayString("HARVEST_CRON", "5 * * * *"),
		SweepCron:     sf.MayString("SWEEP_CRON", "*/30 * * * *"),
		RecordsCron:   sf.MayString("RETENTION_RECORDS_CRON", "0 2 * * *"),
		ArtifactsCron: sf.MayString("RETENTION_ARTIFACTS_CRON", "30 2 * * *"),
	}
}

// Scheduler owns the cron runner
type Scheduler struct {
	cron *cron.Cron
	loc  *time.Location
}

// New registers the five recurring tasks. Entry errors surface immediately
// so a bad expression fails boot instead of silently never firing
func New(
	opts Options,
	factory jobsdom.FactoryPort,
	runner pipedom.RunnerPort,
	sweeper retdom.SweeperPort,
) (*Scheduler, error) {
	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return nil, perr.Configf("bad timezone %q: %v", opts.Timezone, err)
	}

	c := cron.New(cron.WithLocation(loc))
	s := &Scheduler{cron: c, loc: loc}

	add := func(name, expr string, fn func(context.Context) error) error {
		_, err := c.AddFunc(expr, func() {
			ctx := context.Background()
			log := logger.Named("scheduler")
			start := time.Now()
			if err := fn(ctx); err != nil {
				log.Error().Err(err).Str("task", name).Msg("task failed")
				return
			}
			log.Info().Str("task", name).Dur("elapsed", time.Since(start)).Msg("task done")
		})
		if err != nil {
			return perr.Configf("bad cron %q for %s: %v", expr, name, err)
		}
		return nil
	}

	if err := add("factory", opts.FactoryCron, func(ctx context.Context) error {
		date := time.Now().In(loc).Format(hourwindow.DateLayout)
		_, _, err := factory.EnsureJob(ctx, date)
		return err
	}); err != nil {
		return nil, err
	}
	if err := add("harvest", opts.HarvestCron, runner.RunPrevious); err != nil {
		return nil, err
	}
	if err := add("sweep", opts.SweepCron, runner.Sweep); err != nil {
		return nil, err
	}
	if err := add("retention-records", opts.RecordsCron, func(ctx context.Context) error {
		_, err := sweeper.RunRecords(ctx, false)
		return err
	}); err != nil {
		return nil, err
	}
	if err := add("retention-artifacts", opts.ArtifactsCron, func(ctx context.Context) error {
		_, err := sweeper.RunArtifacts(ctx, false)
		return err
	}); err != nil {
		return nil, err
	}
	return s, nil
}

// Run starts the schedule and blocks until ctx is canceled, then waits for
// in-flight tasks to finish
func (s *Scheduler) Run(ctx context.Context) error {
	log := logger.Named("scheduler")
	log.Info().Str("tz", s.loc.String()).Msg("schedule started")
	s.cron.Start()
	<-ctx.Done()
	stop := s.cron.Stop()
	<-stop.Done()
	log.Info().Msg("schedule stopped")
	return nil
}
