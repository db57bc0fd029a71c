package scheduler

import (
	"context"
	"testing"

	"logvault/internal/platform/config"
	perr "logvault/internal/platform/errors"
	jobsdom "logvault/internal/services/jobs/domain"
	retdom "logvault/internal/services/retention/domain"
)

type nopFactory struct{}

func (nopFactory) EnsureJob(_ context.Context, date string) (jobsdom.Job, bool, error) {
	return jobsdom.Job{Date: date}, false, nil
}

type nopRunner struct{}

func (nopRunner) RunPrevious(context.Context) error        { return nil }
func (nopRunner) RunAt(context.Context, string, int) error { return nil }
func (nopRunner) Sweep(context.Context) error              { return nil }

type nopSweeper struct{}

func (nopSweeper) Run(context.Context, bool) (retdom.Report, error)          { return retdom.Report{}, nil }
func (nopSweeper) RunRecords(context.Context, bool) (retdom.Report, error)   { return retdom.Report{}, nil }
func (nopSweeper) RunArtifacts(context.Context, bool) (retdom.Report, error) { return retdom.Report{}, nil }

func TestFromConfigDefaults(t *testing.T) {
	opts := FromConfig(config.New())

	if opts.Timezone != "UTC" {
		t.Fatalf("timezone = %q", opts.Timezone)
	}
	if opts.FactoryCron != "0 0 * * *" ||
		opts.HarvestCron != "5 * * * *" ||
		opts.SweepCron != "*/30 * * * *" ||
		opts.RecordsCron != "0 2 * * *" ||
		opts.ArtifactsCron != "30 2 * * *" {
		t.Fatalf("defaults = %+v", opts)
	}
}

func TestFromConfigOverrides(t *testing.T) {
	t.Setenv("CORE_SCHEDULE_TIMEZONE", "America/New_York")
	t.Setenv("CORE_SCHEDULE_HARVEST_CRON", "10 * * * *")

	opts := FromConfig(config.New())
	if opts.Timezone != "America/New_York" || opts.HarvestCron != "10 * * * *" {
		t.Fatalf("overrides not read: %+v", opts)
	}
}

func TestNewAcceptsDefaultSchedule(t *testing.T) {
	s, err := New(FromConfig(config.New()), nopFactory{}, nopRunner{}, nopSweeper{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s == nil || s.loc.String() != "UTC" {
		t.Fatalf("scheduler = %+v", s)
	}
}

func TestNewRejectsBadTimezone(t *testing.T) {
	opts := FromConfig(config.New())
	opts.Timezone = "Atlantis/Lost"

	_, err := New(opts, nopFactory{}, nopRunner{}, nopSweeper{})
	if !perr.IsCode(err, perr.ErrorCodeConfig) {
		t.Fatalf("err = %v, want config error", err)
	}
}

func TestNewRejectsBadCronExpression(t *testing.T) {
	opts := FromConfig(config.New())
	opts.SweepCron = "every thirty minutes"

	_, err := New(opts, nopFactory{}, nopRunner{}, nopSweeper{})
	if !perr.IsCode(err, perr.ErrorCodeConfig) {
		t.Fatalf("err = %v, want config error", err)
	}
}
