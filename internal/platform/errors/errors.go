// Package errors provides a structured error type with wrapping and metadata
package errors

// Always import the project errors package as perr (platform/errors)

import (
	"context"
	stderrs "errors"
	"fmt"
	"net/http"
)

// ErrorCode defines supported error codes used across services
// Values are stable for wire compatibility; add sparingly
type ErrorCode uint16

const (
	// ErrorCodeUnknown is for unclassified errors
	ErrorCodeUnknown ErrorCode = iota

	// ErrorCodePanic is for panics recovered by middleware
	ErrorCodePanic

	// ErrorCodeUnavailable is for transient upstream errors where retry may succeed
	// (verification service timeouts and network failures land here)
	ErrorCodeUnavailable

	// ErrorCodeTooManyRequests is for rate limiting
	ErrorCodeTooManyRequests

	// ErrorCodeForbidden is for access control failures
	ErrorCodeForbidden

	// ErrorCodeVerification is for a human-verification token the provider rejected
	ErrorCodeVerification

	// ErrorCodeMissingToken is for a submission without a verification token
	ErrorCodeMissingToken

	// ErrorCodeValidation is for validation failures (input data)
	ErrorCodeValidation

	// ErrorCodeJSON is for JSON parsing errors
	ErrorCodeJSON

	// ErrorCodePayloadTooLarge is for request bodies over the accepted size
	ErrorCodePayloadTooLarge

	// ErrorCodeNotFound is for missing resources
	ErrorCodeNotFound

	// ErrorCodeMethodNotAllowed is for unsupported HTTP methods
	ErrorCodeMethodNotAllowed

	// ErrorCodeMisconfigured is for missing server-side configuration
	ErrorCodeMisconfigured

	// ErrorCodeDelivery is for notification transport failures
	ErrorCodeDelivery

	// ErrorCodeCanceled is for requests abandoned by the caller (client side only)
	ErrorCodeCanceled

	// ErrorCodeBlocked is for submissions refused before any network call (client side only)
	ErrorCodeBlocked
)

var codeNames = map[ErrorCode]string{
	ErrorCodeUnknown:          "unknown",
	ErrorCodePanic:            "panic",
	ErrorCodeUnavailable:      "unavailable",
	ErrorCodeTooManyRequests:  "rate_limited",
	ErrorCodeForbidden:        "forbidden",
	ErrorCodeVerification:     "verification_failed",
	ErrorCodeMissingToken:     "missing_token",
	ErrorCodeValidation:       "invalid_payload",
	ErrorCodeJSON:             "invalid_json",
	ErrorCodePayloadTooLarge:  "body_too_large",
	ErrorCodeNotFound:         "not_found",
	ErrorCodeMethodNotAllowed: "method_not_allowed",
	ErrorCodeMisconfigured:    "server_misconfigured",
	ErrorCodeDelivery:         "delivery_failed",
	ErrorCodeCanceled:         "canceled",
	ErrorCodeBlocked:          "blocked",
}

// String returns a stable snake_case name, used as a metrics label
func (c ErrorCode) String() string {
	if s, ok := codeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("code_%d", uint16(c))
}

// MarshalText writes the stable name so wire bodies carry "rate_limited", not 3
func (c ErrorCode) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// UnmarshalText accepts the names produced by MarshalText; unknown names decode as ErrorCodeUnknown
func (c *ErrorCode) UnmarshalText(b []byte) error {
	name := string(b)
	for code, n := range codeNames {
		if n == name {
			*c = code
			return nil
		}
	}
	*c = ErrorCodeUnknown
	return nil
}

// HTTPStatusCode turns an ErrorCode into an http status code
func HTTPStatusCode(c ErrorCode) int {
	switch c {
	case ErrorCodeNotFound:
		return http.StatusNotFound
	case ErrorCodeMethodNotAllowed:
		return http.StatusMethodNotAllowed
	case ErrorCodeValidation, ErrorCodeJSON, ErrorCodeMissingToken:
		return http.StatusBadRequest
	case ErrorCodePayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrorCodeForbidden, ErrorCodeVerification:
		return http.StatusForbidden
	case ErrorCodeTooManyRequests:
		return http.StatusTooManyRequests
	case ErrorCodeUnavailable:
		return http.StatusServiceUnavailable
	case ErrorCodeMisconfigured, ErrorCodeDelivery, ErrorCodePanic, ErrorCodeUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// CodeForStatus maps an HTTP status back to the closest ErrorCode (used by clients of the API)
func CodeForStatus(status int) ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return ErrorCodeValidation
	case http.StatusForbidden:
		return ErrorCodeVerification
	case http.StatusNotFound:
		return ErrorCodeNotFound
	case http.StatusMethodNotAllowed:
		return ErrorCodeMethodNotAllowed
	case http.StatusRequestEntityTooLarge:
		return ErrorCodePayloadTooLarge
	case http.StatusTooManyRequests:
		return ErrorCodeTooManyRequests
	case http.StatusServiceUnavailable, http.StatusBadGateway, http.StatusGatewayTimeout:
		return ErrorCodeUnavailable
	default:
		if status >= 500 {
			return ErrorCodeDelivery
		}
		return ErrorCodeUnknown
	}
}

// Error is the structured error type with wrapping and metadata
// msg is user facing and safe to return; orig carries operator detail for logs
// field is optional (for validation)
type Error struct {
	orig  error
	msg   string
	code  ErrorCode
	field string
}

// Wire is the JSON-serializable form returned by the API
type Wire struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Field   string    `json:"field,omitempty"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.orig != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.orig)
	}
	return e.msg
}

// Unwrap returns the wrapped error, if any
func (e *Error) Unwrap() error { return e.orig }

// Code returns the error code
func (e *Error) Code() ErrorCode { return e.code }

// Message returns the user-facing message without the wrapped cause
func (e *Error) Message() string { return e.msg }

// Field returns the offending field, if any
func (e *Error) Field() string { return e.field }

// ToWire converts an *Error to a Wire payload
func (e *Error) ToWire() Wire { return Wire{Code: e.code, Message: e.msg, Field: e.field} }

// WireFrom converts any error into a Wire payload with best-effort mapping
// Foreign errors never leak their text; they become a generic internal message
func WireFrom(err error) Wire {
	if err == nil {
		return Wire{}
	}
	if e, ok := As(err); ok {
		return e.ToWire()
	}
	return Wire{Code: ErrorCodeUnknown, Message: "internal error"}
}

// Root returns the deepest wrapped cause
func Root(err error) error {
	for err != nil {
		u := stderrs.Unwrap(err)
		if u == nil {
			return err
		}
		err = u
	}
	return nil
}

// CodeOf extracts an ErrorCode from any error, defaulting to Unknown
func CodeOf(err error) ErrorCode {
	if e, ok := As(err); ok {
		return e.code
	}
	return ErrorCodeUnknown
}

// IsCode reports whether err has the given code
func IsCode(err error, code ErrorCode) bool { return CodeOf(err) == code }

// HTTPStatus returns the mapped HTTP status for any error
func HTTPStatus(err error) int { return HTTPStatusCode(CodeOf(err)) }

// As unwraps and returns (*Error, true) if err is one of ours
func As(err error) (*Error, bool) {
	var e *Error
	if stderrs.As(err, &e) {
		return e, true
	}
	return nil, false
}

// Mutators (copy-on-write)

// WithField attaches a field to an *Error (copy-on-write). If err isn't *Error, returns err unchanged
func WithField(err error, field string) error {
	if e, ok := As(err); ok {
		c := *e
		c.field = field
		return &c
	}
	return err
}

// Constructors

// New returns a new *Error with the given code and message
func New(code ErrorCode, msg string) error { return &Error{code: code, msg: msg} }

// Newf returns a new *Error with code and formatted message
func Newf(code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...)}
}

// Wrap returns a new *Error that wraps orig with code and message
func Wrap(orig error, code ErrorCode, msg string) error {
	return &Error{code: code, msg: msg, orig: orig}
}

// Wrapf returns a new *Error that wraps orig with code and formatted message
func Wrapf(orig error, code ErrorCode, format string, a ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, a...), orig: orig}
}

// Sugar

// NotFoundf returns a not found error
func NotFoundf(format string, a ...any) error { return Newf(ErrorCodeNotFound, format, a...) }

// JSONErrf returns a JSON error
func JSONErrf(format string, a ...any) error { return Newf(ErrorCodeJSON, format, a...) }

// PanicErrf returns a panic error
func PanicErrf(format string, a ...any) error { return Newf(ErrorCodePanic, format, a...) }

// HTTP bundles status + wire in one shot (nice for handlers)
func HTTP(err error) (int, Wire) {
	if err == nil {
		return http.StatusOK, Wire{}
	}
	return HTTPStatus(err), WireFrom(err)
}

// Retry semantics

// Retryable reports whether repeating the same request later may succeed.
// Context cancellation is never retryable; the caller chose to stop.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if stderrs.Is(err, context.Canceled) {
		return false
	}
	if stderrs.Is(err, context.DeadlineExceeded) {
		return true
	}
	switch CodeOf(err) {
	case ErrorCodeUnavailable, ErrorCodeTooManyRequests, ErrorCodeDelivery, ErrorCodeVerification:
		return true
	default:
		return false
	}
}
