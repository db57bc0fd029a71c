package hourwindow

import (
	"testing"
	"time"
)

func TestRangeLabels(t *testing.T) {
	cases := map[int]string{0: "00-01", 9: "09-10", 14: "14-15", 23: "23-24"}
	for slot, want := range cases {
		got, err := Range(slot)
		if err != nil {
			t.Fatalf("Range(%d): %v", slot, err)
		}
		if got != want {
			t.Fatalf("Range(%d) = %q, want %q", slot, got, want)
		}
	}
}

func TestRangeOutOfBounds(t *testing.T) {
	for _, slot := range []int{-1, 24, 100} {
		if _, err := Range(slot); err == nil {
			t.Fatalf("Range(%d) expected error", slot)
		}
	}
}

func TestSlotRoundTrip(t *testing.T) {
	for i := 0; i < SlotsPerDay; i++ {
		r := MustRange(i)
		got, err := Slot(r)
		if err != nil {
			t.Fatalf("Slot(%q): %v", r, err)
		}
		if got != i {
			t.Fatalf("Slot(%q) = %d, want %d", r, got, i)
		}
	}
}

func TestSlotRejectsMalformed(t *testing.T) {
	for _, s := range []string{"", "14", "14-16", "24-25", "aa-bb", "9-10"} {
		if _, err := Slot(s); err == nil {
			t.Fatalf("Slot(%q) expected error", s)
		}
	}
}

func TestPrevious(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 1, 10, 15, 4, 0, 0, loc)
	date, slot := Previous(now, loc)
	if date != "2025-01-10" || slot != 14 {
		t.Fatalf("Previous = (%s, %d), want (2025-01-10, 14)", date, slot)
	}

	// midnight rolls back to the last hour of the previous day
	now = time.Date(2025, 1, 10, 0, 30, 0, 0, loc)
	date, slot = Previous(now, loc)
	if date != "2025-01-09" || slot != 23 {
		t.Fatalf("Previous at midnight = (%s, %d), want (2025-01-09, 23)", date, slot)
	}
}

func TestPreviousHonorsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	now := time.Date(2025, 1, 10, 22, 0, 0, 0, time.UTC) // 03:00 next day in +5
	date, slot := Previous(now, loc)
	if date != "2025-01-11" || slot != 2 {
		t.Fatalf("Previous = (%s, %d), want (2025-01-11, 2)", date, slot)
	}
}
