package parseable

import (
	"errors"
	"fmt"
)

// ErrorKind classifies an API failure so callers can react without
// string-matching messages.
type ErrorKind string

const (
	KindNetwork      ErrorKind = "network"
	KindAuth         ErrorKind = "auth"
	KindMalformed    ErrorKind = "malformed"
	KindUnconfigured ErrorKind = "unconfigured"
	KindServer       ErrorKind = "server"
)

// APIError is the failure shape returned by every client operation.
// Errors are data: the client never panics on an expected failure mode.
type APIError struct {
	Kind       ErrorKind
	StatusCode int // zero when no HTTP response was received
	Message    string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// ErrNotConfigured is returned by every operation invoked before a
// successful Configure call.
var ErrNotConfigured = &APIError{Kind: KindUnconfigured, Message: "client is not configured"}

// IsKind reports whether err is an *APIError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func networkErr(err error) *APIError {
	return &APIError{Kind: KindNetwork, Message: err.Error()}
}

func malformedErr(err error) *APIError {
	return &APIError{Kind: KindMalformed, Message: err.Error()}
}

func statusErr(code int, body string) *APIError {
	kind := KindServer
	if code == 401 || code == 403 {
		kind = KindAuth
	}
	if body == "" {
		body = "request failed"
	}
	return &APIError{Kind: kind, StatusCode: code, Message: body}
}
