// Package time contains small time helpers shared across services
package time

import "time"

// Ptr returns a pointer to t, or nil when t is the zero time. Report and
// API payloads use it for optional cutoff timestamps
func Ptr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
