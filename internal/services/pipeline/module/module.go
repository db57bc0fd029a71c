// Package module implements the pipeline service module
package module

import (
	"context"
	"time"

	"logvault/internal/adapters/source"
	"logvault/internal/adapters/storage"
	"logvault/internal/core/artifact"
	"logvault/internal/core/masking"
	"logvault/internal/modkit"
	"logvault/internal/modkit/httpkit"
	perr "logvault/internal/platform/errors"
	"logvault/internal/platform/net/http/bind"
	jobsmod "logvault/internal/services/jobs/module"
	pipedom "logvault/internal/services/pipeline/domain"
	"logvault/internal/services/pipeline/service"
)

// Ports exposed by the pipeline module
type Ports struct {
	Runner pipedom.RunnerPort
}

// Module implements the pipeline service module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs a new pipeline module. jobs supplies the persistence ports
// the pipeline drives; a nil backend is opened from config (ctx scopes the open)
func New(ctx context.Context, deps modkit.Deps, jobs jobsmod.Ports, backend storage.Backend) (*Module, error) {
	opts := FromConfig(deps.Cfg)

	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return nil, perr.Configf("bad timezone %q: %v", opts.Timezone, err)
	}

	masker, err := masking.New(masking.Options{
		Enabled:        opts.Mask.Enabled,
		Placeholder:    opts.Mask.Placeholder,
		MaskChar:       opts.Mask.MaskChar,
		PreserveLength: opts.Mask.PreserveLength,
		ShowLast:       opts.Mask.ShowLast,
		Fields:         opts.Mask.Fields,
		Exempt:         opts.Mask.Exempt,
		Patterns:       opts.Mask.Patterns,
	})
	if err != nil {
		return nil, err
	}

	aopt := artifact.Options{
		Root:   opts.Art.Root,
		Format: opts.Art.Format,
		Folder: artifact.FolderOptions{
			Structure: opts.Art.FolderStructure,
			SubHour:   opts.Art.SubHour,
			SubStatus: opts.Art.SubStatus,
		},
		Comp: artifact.CompressOptions{
			Enabled:   opts.Art.Compress,
			Algorithm: opts.Art.CompressAlgo,
			Level:     opts.Art.CompressLevel,
			MinBytes:  int64(opts.Art.CompressMin),
		},
	}
	// a bad enum must stop the process here, not burn retry budget per hour
	if err := bind.Validate(aopt); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeConfig, "artifact options")
	}
	writer := artifact.NewWriter(aopt)

	if backend == nil {
		backend, err = storage.New(ctx, deps.Cfg)
		if err != nil {
			return nil, err
		}
	}

	svc := service.New(
		jobs.Factory, jobs.Query, jobs.Recorder,
		source.NewHTTP(opts.SourceBaseURL, opts.SourceTimeout),
		masker, writer, backend,
		service.Config{MaxRetries: opts.MaxRetries, Location: loc},
	)

	m := &Module{deps: deps}
	m.ports = Ports{Runner: svc}
	return m, nil
}

// Name satisfies modkit.Module
func (m *Module) Name() string { return "pipeline" }

// Ports satisfies modkit.Module
func (m *Module) Ports() any { return m.ports }

// MountRoutes satisfies modkit.Module; triggers are mounted by the api module
func (m *Module) MountRoutes(r httpkit.Router) {}
