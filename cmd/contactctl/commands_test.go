package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"contactgate/internal/core/contact"
	"contactgate/internal/platform/testkit"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func setup(t *testing.T, h http.HandlerFunc) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	t.Setenv("CONTACTCTL_ENDPOINT", srv.URL+"/contact")
	t.Setenv("CONTACTCTL_SESSION_DIR", t.TempDir())
	t.Setenv("CONTACTCTL_MIN_FILL", "0s")
}

func TestComposeThenSend(t *testing.T) {
	var got atomic.Pointer[contact.Payload]
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		var p contact.Payload
		_ = json.NewDecoder(r.Body).Decode(&p)
		got.Store(&p)
		w.Write([]byte(`{"success":true,"message":"Message sent successfully.","referenceId":"M3X-ABC123"}`))
	})

	out, _, err := run(t, "Hello from stdin\n", "compose", "--name", "Tester", "--email", "user@example.com")
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	testkit.MustContain(t, out, "us***@ex***.com")

	out, _, err = run(t, "", "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	testkit.MustContain(t, out, "Tester")

	out, _, err = run(t, "", "send", "--token", "tok-1")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	testkit.MustContain(t, out, "Reference: M3X-ABC123")

	p := got.Load()
	if p == nil || p.Token != "tok-1" || p.Message != "Hello from stdin" {
		t.Fatalf("server saw %+v", p)
	}

	out, _, _ = run(t, "", "status")
	testkit.MustContain(t, out, "No pending message.")
}

func TestSend_RejectedTokenKeepsMessage(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"success":false,"message":"Verification failed. Please try again.","code":"verification_failed"}`))
	})

	if _, _, err := run(t, "", "compose", "--name", "Tester", "--email", "user@example.com", "--message", "Hi"); err != nil {
		t.Fatalf("compose: %v", err)
	}
	_, errOut, err := run(t, "", "send", "--token", "bad")
	if !errors.Is(err, errNotSent) {
		t.Fatalf("want errNotSent, got %v", err)
	}
	testkit.MustContain(t, errOut, "Verification failed")
	testkit.MustContain(t, errOut, "still saved")

	out, _, _ := run(t, "", "status")
	testkit.MustContain(t, out, "Tester")
}

func TestSend_NothingPending(t *testing.T) {
	var calls atomic.Int32
	setup(t, func(w http.ResponseWriter, r *http.Request) { calls.Add(1) })

	_, errOut, err := run(t, "", "send", "--token", "tok")
	if !errors.Is(err, errNotSent) {
		t.Fatalf("want errNotSent, got %v", err)
	}
	testkit.MustContain(t, errOut, "No pending message found")
	if calls.Load() != 0 {
		t.Fatalf("no request expected")
	}
}

func TestCompose_InvalidEmail(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {})

	_, _, err := run(t, "", "compose", "--name", "Tester", "--email", "nope", "--message", "Hi")
	if !errors.Is(err, errNotSent) {
		t.Fatalf("want errNotSent, got %v", err)
	}
	out, _, _ := run(t, "", "status")
	testkit.MustContain(t, out, "No pending message.")
}

func TestDiscard(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {})

	run(t, "", "compose", "--name", "Tester", "--email", "user@example.com", "--message", "Hi")
	out, _, err := run(t, "", "discard")
	if err != nil {
		t.Fatalf("discard: %v", err)
	}
	testkit.MustContain(t, out, "Discarded.")
	out, _, _ = run(t, "", "status")
	testkit.MustContain(t, out, "No pending message.")
}

func TestSessions_AreIsolated(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {})

	t.Setenv("CONTACTCTL_SESSION", "tty-a")
	if _, _, err := run(t, "", "compose", "--name", "Alice", "--email", "alice@example.com", "--message", "Hi"); err != nil {
		t.Fatalf("compose: %v", err)
	}

	t.Setenv("CONTACTCTL_SESSION", "tty-b")
	out, _, _ := run(t, "", "status")
	testkit.MustContain(t, out, "No pending message.")
	if _, _, err := run(t, "", "discard"); err != nil {
		t.Fatalf("discard: %v", err)
	}

	t.Setenv("CONTACTCTL_SESSION", "tty-a")
	out, _, _ = run(t, "", "status")
	testkit.MustContain(t, out, "Alice")
}

func TestLoadConfig_SessionDefaults(t *testing.T) {
	t.Setenv("CONTACTCTL_SESSION_DIR", "")
	t.Setenv("CONTACTCTL_SESSION", "")
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")

	c, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.SessionDir != filepath.Join("/run/user/1000", "contactctl") {
		t.Fatalf("session dir = %s", c.SessionDir)
	}
	if c.Session != "ppid-"+strconv.Itoa(os.Getppid()) {
		t.Fatalf("session = %s", c.Session)
	}

	c.Session = "../../etc"
	if got := c.sessionPath(); filepath.Dir(got) != c.SessionDir {
		t.Fatalf("session escaped its root: %s", got)
	}
}

func TestSend_RequiresToken(t *testing.T) {
	setup(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, _, err := run(t, "", "send"); err == nil {
		t.Fatal("want error without a token")
	}
}
