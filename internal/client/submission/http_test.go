package submission

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"contactgate/internal/core/contact"
	perr "contactgate/internal/platform/errors"
)

func payload() contact.Payload {
	return contact.Payload{Name: "Tester", Email: "user@example.com", Message: "Hello", Token: "tok"}
}

func TestHTTP_Success(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("unexpected request %s %q", r.Method, r.Header.Get("Content-Type"))
		}
		if r.Header.Get("Origin") != "https://site.example" {
			t.Errorf("origin %q", r.Header.Get("Origin"))
		}
		var p contact.Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil || p.Token != "tok" {
			t.Errorf("body %+v %v", p, err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"message":"Message sent successfully.","referenceId":"M3X-ABC123"}`))
	}))
	defer srv.Close()

	h := NewHTTP(srv.URL+"/contact", HTTPOptions{Origin: "https://site.example"})
	rec, err := h.Submit(context.Background(), payload())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if rec.ReferenceID != "M3X-ABC123" || rec.Message != "Message sent successfully." {
		t.Fatalf("receipt %+v", rec)
	}
}

func TestHTTP_ErrorMapping(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		status int
		body   string
		code   perr.ErrorCode
		msg    string
	}{
		{"coded body", 403, `{"success":false,"message":"Verification failed. Please try again.","code":"verification_failed"}`, perr.ErrorCodeVerification, "Verification failed. Please try again."},
		{"missing token", 400, `{"success":false,"message":"Verification required.","code":"missing_token"}`, perr.ErrorCodeMissingToken, "Verification required."},
		{"rate limited", 429, `{"success":false,"message":"Too many requests. Please try again later.","code":"rate_limited"}`, perr.ErrorCodeTooManyRequests, "Too many requests. Please try again later."},
		{"plain 502", 502, `<html>bad gateway</html>`, perr.ErrorCodeUnavailable, "Bad Gateway"},
		{"uncoded 500", 500, `{"success":false}`, perr.ErrorCodeDelivery, "Internal Server Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := NewHTTP(srv.URL, HTTPOptions{}).Submit(context.Background(), payload())
			if !perr.IsCode(err, tc.code) {
				t.Fatalf("want %v, got %v (%v)", tc.code, perr.CodeOf(err), err)
			}
			if w := perr.WireFrom(err); w.Message != tc.msg {
				t.Fatalf("message %q", w.Message)
			}
		})
	}
}

func TestHTTP_GarbageSuccessIsUnavailable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewHTTP(srv.URL, HTTPOptions{}).Submit(context.Background(), payload())
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) || !perr.Retryable(err) {
		t.Fatalf("want retryable unavailable, got %v", err)
	}
}

func TestHTTP_NetworkAndCancel(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	// runs first so Close does not wait on a parked handler
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()
	_, err := NewHTTP(srv.URL, HTTPOptions{}).Submit(ctx, payload())
	if !perr.IsCode(err, perr.ErrorCodeCanceled) {
		t.Fatalf("want canceled, got %v", err)
	}

	dead := httptest.NewServer(http.NotFoundHandler())
	url := dead.URL
	dead.Close()
	_, err = NewHTTP(url, HTTPOptions{Timeout: time.Second}).Submit(context.Background(), payload())
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("want unavailable, got %v", err)
	}
	if w := perr.WireFrom(err); w.Message != MsgNetwork {
		t.Fatalf("message %q", w.Message)
	}
}

func TestHTTP_WithMachine(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"message":"Message sent successfully.","referenceId":"LZ0-QQQQQQ"}`))
	}))
	defer srv.Close()

	r := newRig(t, NewHTTP(srv.URL, HTTPOptions{}).Submit)
	r.composed(t)
	r.verified(t, "tok")
	s, err := r.m.Send(context.Background())
	if err != nil || s.State != StateSuccess || s.ReferenceID != "LZ0-QQQQQQ" {
		t.Fatalf("want success, got %+v %v", s, err)
	}
}
