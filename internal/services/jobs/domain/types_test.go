package domain

import (
	"testing"

	"logvault/internal/core/hourwindow"
)

func TestNewJobMaterializesAllHours(t *testing.T) {
	j := NewJob("2025-06-01", func(hr string) string { return hr + ".json" })

	if j.Date != "2025-06-01" {
		t.Fatalf("date = %q", j.Date)
	}
	if j.Status != StatusPending {
		t.Fatalf("status = %q, want pending", j.Status)
	}
	if len(j.Hours) != hourwindow.SlotsPerDay {
		t.Fatalf("hours = %d, want %d", len(j.Hours), hourwindow.SlotsPerDay)
	}
	if j.CreatedAt.IsZero() {
		t.Fatal("created_at not set")
	}

	if j.Hours[0].HourRange != "00-01" || j.Hours[23].HourRange != "23-24" {
		t.Fatalf("hour labels wrong: first %q last %q", j.Hours[0].HourRange, j.Hours[23].HourRange)
	}
	for i, h := range j.Hours {
		if h.Status != StatusPending {
			t.Fatalf("hour %d status = %q", i, h.Status)
		}
		if h.FileName != h.HourRange+".json" {
			t.Fatalf("hour %d file name = %q", i, h.FileName)
		}
		if h.Retries != 0 || len(h.Logs) != 0 {
			t.Fatalf("hour %d has attempt history on a fresh job", i)
		}
	}
}

func TestHourBounds(t *testing.T) {
	j := NewJob("2025-06-01", func(hr string) string { return hr })

	if h := j.Hour(0); h == nil || h.HourRange != "00-01" {
		t.Fatalf("Hour(0) = %+v", h)
	}
	if h := j.Hour(23); h == nil || h.HourRange != "23-24" {
		t.Fatalf("Hour(23) = %+v", h)
	}
	if j.Hour(-1) != nil || j.Hour(24) != nil {
		t.Fatal("out-of-range slot returned a unit")
	}

	// mutations through the pointer land in the document
	j.Hour(5).Status = StatusSuccess
	if j.Hours[5].Status != StatusSuccess {
		t.Fatal("Hour did not return a live pointer")
	}
}

func TestRollup(t *testing.T) {
	j := NewJob("2025-06-01", func(hr string) string { return hr })

	j.Rollup()
	if j.Status != StatusPending {
		t.Fatalf("fresh job rolled up to %q", j.Status)
	}

	for i := range j.Hours {
		j.Hours[i].Status = StatusSuccess
	}
	j.Rollup()
	if j.Status != StatusSuccess {
		t.Fatalf("all-success job rolled up to %q", j.Status)
	}

	j.Hours[7].Status = StatusFailed
	j.Rollup()
	if j.Status != StatusFailed {
		t.Fatalf("job with a failed hour rolled up to %q", j.Status)
	}

	// one pending hour is enough to keep the day open again
	j.Hours[7].Status = StatusPending
	j.Rollup()
	if j.Status != StatusPending {
		t.Fatalf("job with a pending hour rolled up to %q", j.Status)
	}

	// a truncated document can never be a success
	short := Job{Date: "2025-06-01", Hours: []HourUnit{{Status: StatusSuccess}}}
	short.Rollup()
	if short.Status != StatusPending {
		t.Fatalf("truncated job rolled up to %q", short.Status)
	}
}
