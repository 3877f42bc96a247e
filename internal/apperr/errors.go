package apperr

import (
	"context"
	"errors"
	"fmt"
)

type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// TransportError reports a failed upstream call: connection failure,
// non-2xx status or a body that could not be decoded.
type TransportError struct {
	// StatusCode is zero when no response was received
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("transport: status %d: %v", e.StatusCode, e.Err)
	}
	return "transport: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func NewTransport(err error) *TransportError {
	return &TransportError{Err: err}
}

func NewTransportStatus(code int, body string) *TransportError {
	return &TransportError{StatusCode: code, Err: fmt.Errorf("unexpected status code: %d, body: %s", code, body)}
}

// CancelledError means the caller gave up on the request before it completed.
// It must never be shown to a user.
type CancelledError struct {
	Err error
}

func (e *CancelledError) Error() string {
	return "request cancelled: " + e.Err.Error()
}

func (e *CancelledError) Unwrap() error {
	return e.Err
}

func NewCancelled(err error) *CancelledError {
	if err == nil {
		err = context.Canceled
	}
	return &CancelledError{Err: err}
}

func IsCancelled(err error) bool {
	var ce *CancelledError
	return errors.As(err, &ce)
}

func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
