package config

import (
	"testing"
	"time"

	kit "logvault/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	root := New()
	api := root.Prefix("API_")
	if got := api.key("PORT"); got != "API_PORT" {
		t.Fatalf("key() = %q, want %q", got, "API_PORT")
	}
	// nested prefix
	apiLog := api.Prefix("LOG_")
	if got := apiLog.key("LEVEL"); got != "API_LOG_LEVEL" {
		t.Fatalf("nested key() = %q, want %q", got, "API_LOG_LEVEL")
	}
}

// Must* panics

func TestMustString(t *testing.T) {
	c := New().Prefix("APP_")
	t.Setenv("APP_NAME", "  logvault ")
	got := c.MustString("NAME")
	if got != "logvault" {
		t.Fatalf("MustString = %q, want %q", got, "logvault")
	}

	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
}

func TestMustInt(t *testing.T) {
	c := New().Prefix("SVC_")
	t.Setenv("SVC_WORKERS", "  8 ")
	if got := c.MustInt("WORKERS"); got != 8 {
		t.Fatalf("MustInt = %d, want %d", got, 8)
	}
	kit.MustPanic(t, func() { _ = c.MustInt("MISSING") })
	t.Setenv("SVC_BAD", "x")
	kit.MustPanic(t, func() { _ = c.MustInt("BAD") })
}

func TestRequire(t *testing.T) {
	c := New().Prefix("R_")
	t.Setenv("R_A", "1")
	t.Setenv("R_B", "2")
	kit.MustNotPanic(t, func() { c.Require("A", "B") })
	kit.MustPanic(t, func() { c.Require("A", "MISSING") })
}

// May* defaults

func TestMayString(t *testing.T) {
	c := New().Prefix("S_")
	if got := c.MayString("NAME", "x"); got != "x" {
		t.Fatalf("MayString default = %q, want %q", got, "x")
	}
	t.Setenv("S_NAME", " logvault ")
	if got := c.MayString("NAME", "x"); got != "logvault" {
		t.Fatalf("MayString value = %q, want %q", got, "logvault")
	}
}

func TestMayInt(t *testing.T) {
	c := New().Prefix("I_")
	if got := c.MayInt("N", 7); got != 7 {
		t.Fatalf("MayInt default = %d", got)
	}
	t.Setenv("I_N", "42")
	if got := c.MayInt("N", 7); got != 42 {
		t.Fatalf("MayInt value = %d", got)
	}
	t.Setenv("I_N", "nope")
	if got := c.MayInt("N", 7); got != 7 {
		t.Fatalf("MayInt invalid = %d, want default", got)
	}
}

func TestMayInt64(t *testing.T) {
	c := New().Prefix("I64_")
	t.Setenv("I64_N", "9000000000")
	if got := c.MayInt64("N", 1); got != 9000000000 {
		t.Fatalf("MayInt64 = %d", got)
	}
}

func TestMayBool(t *testing.T) {
	c := New().Prefix("B_")
	if c.MayBool("ON", false) {
		t.Fatal("MayBool default should be false")
	}
	t.Setenv("B_ON", "true")
	if !c.MayBool("ON", false) {
		t.Fatal("MayBool should parse true")
	}
	t.Setenv("B_ON", "banana")
	if c.MayBool("ON", false) {
		t.Fatal("MayBool invalid should fall back to default")
	}
}

func TestMayDuration(t *testing.T) {
	c := New().Prefix("D_")
	if got := c.MayDuration("T", time.Second); got != time.Second {
		t.Fatalf("MayDuration default = %v", got)
	}
	t.Setenv("D_T", "250ms")
	if got := c.MayDuration("T", time.Second); got != 250*time.Millisecond {
		t.Fatalf("MayDuration = %v", got)
	}
	t.Setenv("D_T", "soon")
	if got := c.MayDuration("T", time.Second); got != time.Second {
		t.Fatalf("MayDuration invalid = %v, want default", got)
	}
}

func TestMayStrings(t *testing.T) {
	c := New().Prefix("L_")
	if got := c.MayStrings("XS", []string{"a"}); len(got) != 1 || got[0] != "a" {
		t.Fatalf("MayStrings default = %v", got)
	}
	t.Setenv("L_XS", " one , two ,, three ")
	got := c.MayStrings("XS", nil)
	if len(got) != 3 || got[0] != "one" || got[1] != "two" || got[2] != "three" {
		t.Fatalf("MayStrings = %v", got)
	}
}
