// Package domain defines the types and interfaces for the jobs service
package domain

import (
	"time"

	"logvault/internal/core/hourwindow"
)

// Status is the lifecycle state of a job or one of its hour units
type Status string

// Job and hour unit statuses
const (
	StatusPending Status = "pending"
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// Action classifies an audit trail entry for a single hour attempt
type Action string

// Audit actions; the retry variants are used when a unit had prior failures
const (
	ActionSuccess      Action = "success"
	ActionFailed       Action = "failed"
	ActionRetrySuccess Action = "retry_success"
	ActionRetryFailed  Action = "retry_failed"
)

// AttemptLog records one failed attempt on an hour unit
type AttemptLog struct {
	Timestamp time.Time `json:"timestamp"`
	Error     string    `json:"error"`
}

// HourUnit is the per-hour slice of a day's work. Retries counts failed
// attempts and always equals len(Logs)
type HourUnit struct {
	HourRange string       `json:"hour_range"`
	FileName  string       `json:"file_name"`
	FilePath  string       `json:"file_path"`
	Status    Status       `json:"status"`
	Retries   int          `json:"retries"`
	Logs      []AttemptLog `json:"logs,omitempty"`
}

// Job is one calendar day of harvesting, keyed by date, holding all 24
// hour units as a single document
type Job struct {
	Date      string     `json:"date"`
	Status    Status     `json:"status"`
	Hours     []HourUnit `json:"hours"`
	CreatedAt time.Time  `json:"created_at"`
}

// ActionLog is one audit trail row
type ActionLog struct {
	ID           string    `json:"id"`
	JobDate      string    `json:"job_date"`
	HourRange    string    `json:"hour_range"`
	Action       Action    `json:"action"`
	ErrorMessage string    `json:"error_message,omitempty"`
	DurationMS   int64     `json:"duration_ms,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewJob builds a pending job with all hour units pre-materialized.
// nameFor maps an hour range label to the artifact file name
func NewJob(date string, nameFor func(hourRange string) string) Job {
	hours := make([]HourUnit, hourwindow.SlotsPerDay)
	for slot := range hours {
		hr := hourwindow.MustRange(slot)
		hours[slot] = HourUnit{
			HourRange: hr,
			FileName:  nameFor(hr),
			Status:    StatusPending,
		}
	}
	return Job{Date: date, Status: StatusPending, Hours: hours, CreatedAt: time.Now().UTC()}
}

// Hour returns the unit for the given slot, or nil when out of range
func (j *Job) Hour(slot int) *HourUnit {
	if slot < 0 || slot >= len(j.Hours) {
		return nil
	}
	return &j.Hours[slot]
}

// Rollup recomputes the job status from its hour units: success only when
// every unit succeeded, failed as soon as any unit failed, pending otherwise
func (j *Job) Rollup() {
	allSuccess := len(j.Hours) == hourwindow.SlotsPerDay
	for i := range j.Hours {
		switch j.Hours[i].Status {
		case StatusFailed:
			j.Status = StatusFailed
			return
		case StatusSuccess:
		default:
			allSuccess = false
		}
	}
	if allSuccess {
		j.Status = StatusSuccess
		return
	}
	j.Status = StatusPending
}
