// Package domain defines the types and interfaces for the retention service
package domain

import (
	"context"
	"time"
)

// Policy sets the maximum age per collection; a zero age disables that
// collection's ageing
type Policy struct {
	JobMaxAge      time.Duration // job documents, by creation time
	ActionMaxAge   time.Duration // audit rows, by their own timestamp
	ArtifactMaxAge time.Duration // uploaded artifact objects
}

// Report summarizes one retention pass. A dry run reports what a wet run
// would remove, computed with the same cutoffs
type Report struct {
	DryRun bool `json:"dry_run"`

	JobCutoff      *time.Time `json:"job_cutoff,omitempty"`
	ActionCutoff   *time.Time `json:"action_cutoff,omitempty"`
	ArtifactCutoff *time.Time `json:"artifact_cutoff,omitempty"`

	Jobs      int64 `json:"jobs"`
	Actions   int64 `json:"actions"`
	Artifacts int   `json:"artifacts"`
	Bytes     int64 `json:"bytes"`
}

// SweeperPort runs retention passes. The record and artifact channels are
// independently schedulable; Run covers both for previews and the CLI
type SweeperPort interface {
	Run(ctx context.Context, dryRun bool) (Report, error)
	RunRecords(ctx context.Context, dryRun bool) (Report, error)
	RunArtifacts(ctx context.Context, dryRun bool) (Report, error)
}
