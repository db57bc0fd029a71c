// Package service implements retention sweeps over records and artifacts
package service

import (
	"context"
	"time"

	"logvault/internal/adapters/storage"
	"logvault/internal/platform/logger"
	ptime "logvault/internal/platform/time"
	jobsdom "logvault/internal/services/jobs/domain"
	"logvault/internal/services/retention/domain"
)

// now is a seam for tests
var now = time.Now

// Service implements domain.SweeperPort
type Service struct {
	Purge  jobsdom.PurgePort
	Store  storage.Backend
	Policy domain.Policy
}

// New constructs a new retention service
func New(purge jobsdom.PurgePort, store storage.Backend, policy domain.Policy) *Service {
	return &Service{Purge: purge, Store: store, Policy: policy}
}

// Run implements domain.SweeperPort: both channels in one pass. Dry and wet
// runs share the exact same cutoff arithmetic so a preview never diverges
// from what a pass would do
func (s *Service) Run(ctx context.Context, dryRun bool) (domain.Report, error) {
	rep, err := s.runRecords(ctx, dryRun, domain.Report{DryRun: dryRun})
	if err != nil {
		return rep, err
	}
	rep, err = s.runArtifacts(ctx, dryRun, rep)
	if err != nil {
		return rep, err
	}
	s.log(ctx, dryRun, rep)
	return rep, nil
}

// RunRecords implements domain.SweeperPort; ages out jobs and audit rows only
func (s *Service) RunRecords(ctx context.Context, dryRun bool) (domain.Report, error) {
	rep, err := s.runRecords(ctx, dryRun, domain.Report{DryRun: dryRun})
	if err != nil {
		return rep, err
	}
	s.log(ctx, dryRun, rep)
	return rep, nil
}

// RunArtifacts implements domain.SweeperPort; ages out stored artifacts only
func (s *Service) RunArtifacts(ctx context.Context, dryRun bool) (domain.Report, error) {
	rep, err := s.runArtifacts(ctx, dryRun, domain.Report{DryRun: dryRun})
	if err != nil {
		return rep, err
	}
	s.log(ctx, dryRun, rep)
	return rep, nil
}

func (s *Service) runRecords(ctx context.Context, dryRun bool, rep domain.Report) (domain.Report, error) {
	if s.Policy.JobMaxAge <= 0 && s.Policy.ActionMaxAge <= 0 {
		return rep, nil
	}
	ref := now().UTC()
	var jobCutoff, actionCutoff time.Time
	if s.Policy.JobMaxAge > 0 {
		jobCutoff = ref.Add(-s.Policy.JobMaxAge)
		rep.JobCutoff = ptime.Ptr(jobCutoff)
	}
	if s.Policy.ActionMaxAge > 0 {
		actionCutoff = ref.Add(-s.Policy.ActionMaxAge)
		rep.ActionCutoff = ptime.Ptr(actionCutoff)
	}

	var err error
	if dryRun {
		rep.Jobs, rep.Actions, err = s.Purge.CountBefore(ctx, jobCutoff, actionCutoff)
	} else {
		rep.Jobs, rep.Actions, err = s.Purge.PurgeBefore(ctx, jobCutoff, actionCutoff)
	}
	return rep, err
}

func (s *Service) runArtifacts(ctx context.Context, dryRun bool, rep domain.Report) (domain.Report, error) {
	if s.Policy.ArtifactMaxAge > 0 {
		cutoff := now().UTC().Add(-s.Policy.ArtifactMaxAge)
		rep.ArtifactCutoff = ptime.Ptr(cutoff)

		objects, err := s.Store.List(ctx, "")
		if err != nil {
			return rep, err
		}
		aged := make([]storage.Object, 0, len(objects))
		for _, o := range objects {
			if o.Modified.Before(cutoff) {
				aged = append(aged, o)
			}
		}

		if dryRun {
			rep.Artifacts = len(aged)
			for _, o := range aged {
				rep.Bytes += o.Size
			}
		} else {
			rep.Artifacts, rep.Bytes, err = s.Store.Remove(ctx, aged)
			if err != nil {
				return rep, err
			}
		}
	}
	return rep, nil
}

func (s *Service) log(ctx context.Context, dryRun bool, rep domain.Report) {
	evt := logger.C(ctx).Info()
	if dryRun {
		evt = logger.C(ctx).Debug()
	}
	evt.Bool("dry_run", dryRun).
		Int64("jobs", rep.Jobs).
		Int64("actions", rep.Actions).
		Int("artifacts", rep.Artifacts).
		Int64("bytes", rep.Bytes).
		Msg("retention pass")
}
