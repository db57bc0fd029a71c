// Package api provides the HTTP surface for job inspection and triggers
package api

import (
	"context"
	"time"

	"logvault/internal/adapters/storage"
	"logvault/internal/modkit"
	"logvault/internal/modkit/module"
	"logvault/internal/platform/config"
	phttp "logvault/internal/platform/net/http"
	"logvault/internal/platform/net/middleware"
	"logvault/internal/platform/store"

	apihttp "logvault/internal/services/api/http"
	jobsmod "logvault/internal/services/jobs/module"
	pipemod "logvault/internal/services/pipeline/module"
	retmod "logvault/internal/services/retention/module"
)

// Options are the API options
type Options struct {
	Config      config.Conf
	Store       *store.Store
	ServiceName string
}

// Mount wires the service modules and mounts the API routes
func Mount(ctx context.Context, r phttp.Router, opt Options) error {
	deps := modkit.Deps{
		Cfg: opt.Config,
		PG:  opt.Store.PG,
		CH:  opt.Store.CH,
	}

	jobs := jobsmod.New(deps)
	module.Register(jobs.Name(), jobs.Ports())
	jp := jobs.Ports().(jobsmod.Ports)

	// one backend shared by the pipeline and retention
	backend, err := storage.New(ctx, deps.Cfg)
	if err != nil {
		return err
	}

	pipe, err := pipemod.New(ctx, deps, jp, backend)
	if err != nil {
		return err
	}
	module.Register(pipe.Name(), pipe.Ports())

	ret, err := retmod.New(ctx, deps, jp, backend)
	if err != nil {
		return err
	}
	module.Register(ret.Name(), ret.Ports())

	r.Use(middleware.Defaults()...)
	r.Use(middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: 2 * time.Second}))
	r.Use(middleware.RecoverJSON)

	apihttp.Register(r, apihttp.Deps{
		ServiceName: opt.ServiceName,
		StartedAt:   time.Now(),
		Jobs:        jp.Query,
		Factory:     jp.Factory,
		Runner:      pipe.Ports().(pipemod.Ports).Runner,
		Sweeper:     ret.Ports().(retmod.Ports).Sweeper,
		PG:          opt.Store.PG,
		CH:          opt.Store.CH,
	})
	return nil
}
