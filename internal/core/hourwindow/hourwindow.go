// Package hourwindow maps wall-clock time onto the hour slots a day is
// divided into. A day has 24 slots labeled "00-01" .. "23-24"; slot index
// equals the starting hour.
package hourwindow

import (
	"fmt"
	"time"

	perr "logvault/internal/platform/errors"
)

// DateLayout is the canonical job date format
const DateLayout = "2006-01-02"

// SlotsPerDay is the fixed number of hour slots in a job
const SlotsPerDay = 24

// Range returns the "HH-HH" label for a slot index (0..23)
func Range(slot int) (string, error) {
	if slot < 0 || slot >= SlotsPerDay {
		return "", perr.InvalidArgf("hour slot %d out of range 0..23", slot)
	}
	return fmt.Sprintf("%02d-%02d", slot, slot+1), nil
}

// MustRange is Range for callers with a compile-time-safe slot
func MustRange(slot int) string {
	r, err := Range(slot)
	if err != nil {
		panic(err)
	}
	return r
}

// Slot parses a "HH-HH" label back to its slot index
func Slot(hourRange string) (int, error) {
	var from, to int
	if _, err := fmt.Sscanf(hourRange, "%02d-%02d", &from, &to); err != nil {
		return 0, perr.InvalidArgf("malformed hour range %q", hourRange)
	}
	if from < 0 || from >= SlotsPerDay || to != from+1 {
		return 0, perr.InvalidArgf("malformed hour range %q", hourRange)
	}
	return from, nil
}

// Previous resolves the most recently completed hour relative to now:
// the date string and slot of the hour that just ended in loc
func Previous(now time.Time, loc *time.Location) (date string, slot int) {
	t := now.In(loc).Add(-time.Hour)
	return t.Format(DateLayout), t.Hour()
}

// ParseDate validates a YYYY-MM-DD date string
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, perr.InvalidArgf("malformed date %q (want YYYY-MM-DD)", s)
	}
	return t, nil
}
