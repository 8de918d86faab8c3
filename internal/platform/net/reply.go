package net

import (
	"net/http"

	perr "contactgate/internal/platform/errors"
)

// Result is the body every contact-facing endpoint answers with
type Result struct {
	Success     bool           `json:"success"`
	Message     string         `json:"message,omitempty"`
	ReferenceID string         `json:"referenceId,omitempty"`
	Code        perr.ErrorCode `json:"code,omitempty"`
	RequestID   string         `json:"requestId,omitempty"`
	Data        any            `json:"data,omitempty"`
}

// Success builds a 200 result carrying a user-facing message and reference id
func Success(message, referenceID, reqID string) (int, Result) {
	return http.StatusOK, Result{
		Success:     true,
		Message:     message,
		ReferenceID: referenceID,
		RequestID:   reqID,
	}
}

// OK builds a 200 result wrapping arbitrary data (ops endpoints)
func OK(data any, reqID string) (int, Result) {
	return http.StatusOK, Result{Success: true, RequestID: reqID, Data: data}
}

// Failure builds an error result; only the public message reaches the body
func Failure(err error, reqID string) (int, Result) {
	if err == nil {
		return OK(nil, reqID)
	}
	status, w := perr.HTTP(err)
	return status, Result{
		Success:   false,
		Message:   w.Message,
		Code:      w.Code,
		RequestID: reqID,
	}
}
