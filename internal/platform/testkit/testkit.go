// Package testkit holds the helpers tests across the module share: a manual
// clock, seam swapping, and a few assertions that dump useful context
package testkit

import (
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// Swap replaces *target for the duration of the test. Tests that swap
// package-level seams must not run in parallel with each other.
func Swap[T any](t *testing.T, target *T, replacement T) {
	t.Helper()
	orig := *target
	*target = replacement
	t.Cleanup(func() { *target = orig })
}

// MustPanic fails the test unless fn panics
func MustPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("expected a panic")
		}
	}()
	fn()
}

// MustNotPanic fails the test if fn panics
func MustNotPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	fn()
}

// MustContain fails when needle is absent; long output goes to a temp file
func MustContain(t *testing.T, haystack, needle string) {
	t.Helper()
	if strings.Contains(haystack, needle) {
		return
	}
	if len(haystack) <= 512 {
		t.Fatalf("expected %q in:\n%s", needle, haystack)
	}
	p := filepath.Join(t.TempDir(), "output.txt")
	_ = os.WriteFile(p, []byte(haystack), 0o600)
	t.Fatalf("expected %q in output (%d bytes, written to %s)", needle, len(haystack), p)
}

// Decode reads a recorded JSON reply into T after checking the status
func Decode[T any](t *testing.T, rec *httptest.ResponseRecorder, status int) T {
	t.Helper()
	var out T
	if rec.Code != status {
		t.Fatalf("status %d, want %d: %s", rec.Code, status, rec.Body.String())
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode %T: %v: %s", out, err, rec.Body.String())
	}
	return out
}
