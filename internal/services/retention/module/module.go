// Package module implements the retention service module
package module

import (
	"context"
	"time"

	"logvault/internal/adapters/storage"
	"logvault/internal/modkit"
	"logvault/internal/modkit/httpkit"
	"logvault/internal/platform/config"
	jobsmod "logvault/internal/services/jobs/module"
	"logvault/internal/services/retention/domain"
	"logvault/internal/services/retention/service"
)

// Ports exposed by the retention module
type Ports struct {
	Sweeper domain.SweeperPort
}

// Options holds configuration settings for the retention module
type Options struct {
	JobMaxAge      time.Duration
	ActionMaxAge   time.Duration
	ArtifactMaxAge time.Duration
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	rf := cfg.Prefix("CORE_RETENTION_")
	return Options{
		JobMaxAge:      rf.MayDuration("JOBS_MAX_AGE", 90*24*time.Hour),
		ActionMaxAge:   rf.MayDuration("ACTIONS_MAX_AGE", 30*24*time.Hour),
		ArtifactMaxAge: rf.MayDuration("ARTIFACTS_MAX_AGE", 180*24*time.Hour),
	}
}

// Module implements the retention service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new retention module sharing the pipeline's storage backend
func New(ctx context.Context, deps modkit.Deps, jobs jobsmod.Ports, backend storage.Backend) (*Module, error) {
	opts := FromConfig(deps.Cfg)

	if backend == nil {
		var err error
		backend, err = storage.New(ctx, deps.Cfg)
		if err != nil {
			return nil, err
		}
	}

	svc := service.New(jobs.Purge, backend, domain.Policy{
		JobMaxAge:      opts.JobMaxAge,
		ActionMaxAge:   opts.ActionMaxAge,
		ArtifactMaxAge: opts.ArtifactMaxAge,
	})

	m := &Module{deps: deps}
	m.ports = Ports{Sweeper: svc}
	return m, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "retention" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module; the preview route lives in the api module
func (m *Module) MountRoutes(r httpkit.Router) {}
