// Package module implements the jobs service module
package module

import (
	"logvault/internal/modkit"
	"logvault/internal/modkit/httpkit"
	"logvault/internal/services/jobs/domain"
	"logvault/internal/services/jobs/repo"
	"logvault/internal/services/jobs/service"
)

// Ports exposed by the jobs module
type Ports struct {
	Factory  domain.FactoryPort
	Query    domain.QueryPort
	Recorder domain.RecorderPort
	Purge    domain.PurgePort
}

// Module implements the jobs service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new jobs module
func New(deps modkit.Deps) *Module {
	opts := FromConfig(deps.Cfg)

	svc := service.New(deps.PG, repo.NewPG(), deps.CH, service.Config{
		FileExt:         opts.FileExt,
		ActionListLimit: opts.ActionListLimit,
	})

	m := &Module{deps: deps}
	m.ports = Ports{
		Factory:  svc,
		Query:    svc,
		Recorder: svc,
		Purge:    svc,
	}
	return m
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "jobs" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module; jobs has no routes of its own
func (m *Module) MountRoutes(r httpkit.Router) {}
