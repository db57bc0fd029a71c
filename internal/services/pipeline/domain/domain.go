// Package domain defines the ports for the harvest pipeline
package domain

import "context"

// RunnerPort drives hour harvesting
type RunnerPort interface {
	// RunPrevious harvests the most recently completed hour
	RunPrevious(ctx context.Context) error
	// RunAt harvests one specific hour of an existing job on demand
	RunAt(ctx context.Context, date string, slot int) error
	// Sweep retries every failed hour unit still under the retry ceiling
	Sweep(ctx context.Context) error
}
