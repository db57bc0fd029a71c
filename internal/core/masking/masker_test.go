package masking

import (
	"strings"
	"testing"
)

func mustMasker(t *testing.T, opt Options) *Masker {
	t.Helper()
	m, err := New(opt)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

func TestFieldNameMasking(t *testing.T) {
	m := mustMasker(t, Options{Enabled: true})

	rec := map[string]any{
		"user":     "alice",
		"password": "abc123",
		"Api_Key":  "whatever",
	}
	got := m.Mask(rec).(map[string]any)

	if got["password"] != "[MASKED]" {
		t.Fatalf("password = %v, want [MASKED]", got["password"])
	}
	if got["Api_Key"] != "[MASKED]" {
		t.Fatalf("Api_Key = %v, want [MASKED]", got["Api_Key"])
	}
	if got["user"] != "alice" {
		t.Fatalf("user = %v, want alice", got["user"])
	}
	// input untouched
	if rec["password"] != "abc123" {
		t.Fatalf("input mutated: %v", rec["password"])
	}
}

func TestDisabledPassesThrough(t *testing.T) {
	m := mustMasker(t, Options{Enabled: false})
	rec := map[string]any{"password": "abc123"}
	got := m.Mask(rec).(map[string]any)
	if got["password"] != "abc123" {
		t.Fatalf("disabled masker changed value: %v", got["password"])
	}
}

func TestNestedStructures(t *testing.T) {
	m := mustMasker(t, Options{Enabled: true})
	rec := map[string]any{
		"meta": map[string]any{
			"secret": "hunter2",
			"list": []any{
				map[string]any{"token": "t0ken"},
				"contact me at bob@example.com please",
			},
		},
	}
	got := m.Mask(rec).(map[string]any)
	meta := got["meta"].(map[string]any)
	if meta["secret"] != "[MASKED]" {
		t.Fatalf("nested secret = %v", meta["secret"])
	}
	list := meta["list"].([]any)
	if list[0].(map[string]any)["token"] != "[MASKED]" {
		t.Fatalf("nested token = %v", list[0])
	}
	if s := list[1].(string); strings.Contains(s, "bob@example.com") {
		t.Fatalf("email leaked: %q", s)
	}
}

func TestContentPatterns(t *testing.T) {
	m := mustMasker(t, Options{Enabled: true})
	cases := []string{
		"email alice@corp.io inline",
		"jwt eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiIxIn0.sig-part",
		"dsn postgres://u:p@db:5432/app",
		"ssn 123-45-6789",
		"card 4111 1111 1111 1111",
		"call +1 (415) 555-0100 now",
	}
	for _, in := range cases {
		out := m.maskString("note", in)
		if out == in {
			t.Errorf("pattern not masked: %q", in)
		}
		if !strings.Contains(out, "[MASKED]") {
			t.Errorf("no placeholder in %q", out)
		}
	}
}

func TestExemptList(t *testing.T) {
	m := mustMasker(t, Options{Enabled: true, Exempt: []string{"token"}})
	rec := map[string]any{"token": "keep-me", "password": "no"}
	got := m.Mask(rec).(map[string]any)
	if got["token"] != "keep-me" {
		t.Fatalf("exempt token masked: %v", got["token"])
	}
	if got["password"] != "[MASKED]" {
		t.Fatalf("password not masked: %v", got["password"])
	}
}

func TestPreserveLengthShowLast(t *testing.T) {
	m := mustMasker(t, Options{Enabled: true, PreserveLength: true, ShowLast: 4})
	got := m.maskString("password", "supersecret")
	if got != "*******cret" {
		t.Fatalf("got %q, want *******cret", got)
	}
	if len(got) != len("supersecret") {
		t.Fatalf("length not preserved: %d", len(got))
	}
}

func TestShowLastWithoutPreserve(t *testing.T) {
	m := mustMasker(t, Options{Enabled: true, ShowLast: 2})
	got := m.maskString("password", "abc123")
	if got != "[MASKED]23" {
		t.Fatalf("got %q", got)
	}
}

func TestCustomFieldAndPattern(t *testing.T) {
	m := mustMasker(t, Options{
		Enabled:  true,
		Fields:   []string{"internal_id"},
		Patterns: []string{`ACME-\d{6}`},
	})
	rec := map[string]any{
		"internal_id": "xyz",
		"note":        "ref ACME-123456 attached",
	}
	got := m.Mask(rec).(map[string]any)
	if got["internal_id"] != "[MASKED]" {
		t.Fatalf("custom field not masked: %v", got["internal_id"])
	}
	if s := got["note"].(string); strings.Contains(s, "ACME-123456") {
		t.Fatalf("custom pattern leaked: %q", s)
	}
}

func TestInvalidCustomPattern(t *testing.T) {
	if _, err := New(Options{Enabled: true, Patterns: []string{"("}}); err == nil {
		t.Fatal("expected error for invalid pattern")
	}
}

func TestFoldedLookalikeMatches(t *testing.T) {
	m := mustMasker(t, Options{Enabled: true})
	// fullwidth characters hide the email shape from the raw scan
	in := "ｂｏｂ@ｅｘａｍｐｌｅ.ｃｏｍ"
	out := m.maskString("note", in)
	if out != "[MASKED]" {
		t.Fatalf("folded email not masked: %q", out)
	}
}

func TestNonStringScalarUnderSensitiveName(t *testing.T) {
	m := mustMasker(t, Options{Enabled: true})
	rec := map[string]any{"cvv": 123}
	got := m.Mask(rec).(map[string]any)
	if got["cvv"] != "[MASKED]" {
		t.Fatalf("cvv = %v", got["cvv"])
	}
}
