package errors

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeMissingToken, http.StatusBadRequest},
		{ErrorCodePayloadTooLarge, http.StatusRequestEntityTooLarge},
		{ErrorCodeForbidden, http.StatusForbidden},
		{ErrorCodeVerification, http.StatusForbidden},
		{ErrorCodeTooManyRequests, http.StatusTooManyRequests},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeMisconfigured, http.StatusInternalServerError},
		{ErrorCodeDelivery, http.StatusInternalServerError},
		{ErrorCodePanic, http.StatusInternalServerError},
		{ErrorCodeUnknown, http.StatusInternalServerError},
		{9999, http.StatusInternalServerError}, // default branch
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestCodeForStatus(t *testing.T) {
	cases := map[int]ErrorCode{
		400: ErrorCodeValidation,
		403: ErrorCodeVerification,
		413: ErrorCodePayloadTooLarge,
		429: ErrorCodeTooManyRequests,
		503: ErrorCodeUnavailable,
		500: ErrorCodeDelivery,
		418: ErrorCodeUnknown,
	}
	for st, want := range cases {
		if got := CodeForStatus(st); got != want {
			t.Fatalf("CodeForStatus(%d) = %v, want %v", st, got, want)
		}
	}
}

func TestErrorTypeAndMethods(t *testing.T) {
	// nil *Error should render "<nil>"
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q, want <nil>", e.Error())
	}

	e1 := New(ErrorCodeValidation, "bad stuff")
	if CodeOf(e1) != ErrorCodeValidation {
		t.Fatalf("CodeOf(New) = %v", CodeOf(e1))
	}
	e2 := Newf(ErrorCodeJSON, "bad json %d", 12)
	if got := e2.Error(); got != "bad json 12" {
		t.Fatalf("Newf().Error = %q", got)
	}

	src := stderrs.New("root")
	e3 := Wrap(src, ErrorCodeDelivery, "delivery failed")
	if u := stderrs.Unwrap(e3); u == nil || u.Error() != "root" {
		t.Fatalf("Wrap did not keep orig")
	}
	e4 := Wrapf(src, ErrorCodeVerification, "nope %s", "here")
	if want := "nope here: root"; e4.Error() != want {
		t.Fatalf("Wrapf().Error = %q, want %q", e4.Error(), want)
	}
	if got, ok := As(e4); !ok || got.Code() != ErrorCodeVerification || got.Message() != "nope here" {
		t.Fatalf("As() failed for our error")
	}
	if _, ok := As(src); ok {
		t.Fatalf("As() true for foreign error")
	}

	e5 := Wrap(src, ErrorCodeValidation, "oops")
	e6 := WithField(e5, "email")
	if fe, ok := As(e6); !ok || fe.Field() != "email" {
		t.Fatalf("WithField failed")
	}
	if fe0, _ := As(e5); fe0.Field() != "" {
		t.Fatalf("copy-on-write mutated original")
	}
	if WithField(src, "x") != src {
		t.Fatalf("WithField should pass foreign errors through")
	}

	if wf := WireFrom(nil); wf != (Wire{}) {
		t.Fatalf("WireFrom(nil) expected zero, got %+v", wf)
	}
	// foreign error text must not reach the wire
	if wf := WireFrom(src); wf.Code != ErrorCodeUnknown || wf.Message != "internal error" {
		t.Fatalf("WireFrom(foreign) mismatch: %+v", wf)
	}
	// our error uses only e.msg (not "msg: orig")
	if wf := WireFrom(e4); wf.Code != ErrorCodeVerification || wf.Message != "nope here" {
		t.Fatalf("WireFrom(ours) mismatch: %+v", wf)
	}

	if st, _ := HTTP(nil); st != http.StatusOK {
		t.Fatalf("HTTP(nil) status = %d", st)
	}
	if st := HTTPStatus(e3); st != http.StatusInternalServerError {
		t.Fatalf("HTTPStatus mismatch")
	}

	if !IsCode(NotFoundf("x"), ErrorCodeNotFound) ||
		!IsCode(JSONErrf("x"), ErrorCodeJSON) ||
		!IsCode(PanicErrf("x"), ErrorCodePanic) {
		t.Fatalf("sugar helpers code mismatch")
	}

	deep := fmt.Errorf("level2: %w", fmt.Errorf("level1: %w", src))
	if got := Root(deep); got == nil || got.Error() != "root" {
		t.Fatalf("Root() failed, got %v", got)
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{fmt.Errorf("wrapped: %w", context.Canceled), false},
		{context.DeadlineExceeded, true},
		{New(ErrorCodeUnavailable, "x"), true},
		{New(ErrorCodeTooManyRequests, "x"), true},
		{New(ErrorCodeDelivery, "x"), true},
		{New(ErrorCodeVerification, "x"), true},
		{New(ErrorCodeValidation, "x"), false},
		{New(ErrorCodePayloadTooLarge, "x"), false},
		{New(ErrorCodeMisconfigured, "x"), false},
		{stderrs.New("plain"), false},
	}
	for i, c := range cases {
		if got := Retryable(c.err); got != c.want {
			t.Fatalf("case %d Retryable(%v) = %v, want %v", i, c.err, got, c.want)
		}
	}
}

func TestErrorCodeString(t *testing.T) {
	if ErrorCodeTooManyRequests.String() != "rate_limited" {
		t.Fatalf("got %q", ErrorCodeTooManyRequests.String())
	}
	if ErrorCode(999).String() != "code_999" {
		t.Fatalf("got %q", ErrorCode(999).String())
	}
}

func TestErrorCode_TextRoundTrip(t *testing.T) {
	b, err := ErrorCodeTooManyRequests.MarshalText()
	if err != nil || string(b) != "rate_limited" {
		t.Fatalf("MarshalText = %q, %v", b, err)
	}
	var c ErrorCode
	if err := c.UnmarshalText([]byte("delivery_failed")); err != nil || c != ErrorCodeDelivery {
		t.Fatalf("UnmarshalText = %v, %v", c, err)
	}
	if err := c.UnmarshalText([]byte("nope")); err != nil || c != ErrorCodeUnknown {
		t.Fatalf("unknown name should decode as Unknown, got %v", c)
	}
}
