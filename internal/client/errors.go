package client

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

type ErrorKind string

const (
	KindUnauthorized       ErrorKind = "unauthorized"
	KindRemoteUnavailable  ErrorKind = "remote_unavailable"
	KindMalformedResponse  ErrorKind = "malformed_response"
	KindValidationRejected ErrorKind = "validation_rejected"
)

// Error is the failure taxonomy shared by the client and the monitor
// engine. None of the kinds is fatal.
type Error struct {
	Kind       ErrorKind
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	} else if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if msg == "" {
		msg = string(e.Kind)
	}
	prefix := e.Op
	if e.StatusCode > 0 {
		prefix = fmt.Sprintf("%s (%d)", prefix, e.StatusCode)
	}
	if prefix == "" {
		return msg
	}
	return prefix + ": " + msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// KindOf classifies err. Errors that never reached the taxonomy but are
// transport or deadline failures count as RemoteUnavailable.
func KindOf(err error) ErrorKind {
	if err == nil {
		return ""
	}
	var typed *Error
	if errors.As(err, &typed) && typed != nil {
		return typed.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindRemoteUnavailable
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return KindRemoteUnavailable
	}
	return ""
}

func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}

// Rejected reports a command refused before any network call.
func Rejected(op, message string) *Error {
	return &Error{Kind: KindValidationRejected, Op: op, Message: message}
}

func unauthorized(op, message string, err error) *Error {
	return &Error{Kind: KindUnauthorized, Op: op, Message: message, Err: err}
}

func unavailable(op string, err error) *Error {
	return &Error{Kind: KindRemoteUnavailable, Op: op, Err: err}
}

func malformed(op string, err error) *Error {
	return &Error{Kind: KindMalformedResponse, Op: op, Message: "unexpected response shape", Err: err}
}

func kindForStatus(status int) ErrorKind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusRequestTimeout || status == http.StatusTooManyRequests || status >= 500:
		return KindRemoteUnavailable
	default:
		return KindValidationRejected
	}
}
