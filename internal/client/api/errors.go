package api

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind classifies executor failures. Callers branch on the kind, never
// on status codes or error strings.
type ErrorKind int

const (
	// KindInvalidRequest: the request could not be built; fatal to this
	// call only.
	KindInvalidRequest ErrorKind = iota
	// KindTransport: no response was received. Retryable by the caller;
	// never triggers re-authentication.
	KindTransport
	// KindAuthExpired: HTTP 401. Surfaced only after the single
	// re-authentication cycle has been spent; terminal for the session.
	KindAuthExpired
	// KindRateLimited: HTTP 429, with an optional Retry-After hint.
	KindRateLimited
	// KindClient: any other 4xx; generally not retryable.
	KindClient
	// KindServer: 5xx; retryable by the caller at a higher level.
	KindServer
	// KindDecoding: the response body did not match the expected shape.
	// A contract mismatch, not a runtime failure.
	KindDecoding
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid request"
	case KindTransport:
		return "transport failure"
	case KindAuthExpired:
		return "authentication expired"
	case KindRateLimited:
		return "rate limited"
	case KindClient:
		return "client error"
	case KindServer:
		return "server error"
	case KindDecoding:
		return "decoding failure"
	}
	return "unknown"
}

// Error is the executor's error type.
type Error struct {
	Kind       ErrorKind
	StatusCode int           // 0 for non-HTTP failures
	Detail     string        // server-provided detail, when present
	RetryAfter time.Duration // only for KindRateLimited, 0 if absent
	Err        error         // underlying cause, when present
}

func (e *Error) Error() string {
	switch {
	case e.Detail != "" && e.StatusCode != 0:
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.StatusCode, e.Detail)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s (%d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of an executor error, or ok=false if err did not
// originate here.
func KindOf(err error) (ErrorKind, bool) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return 0, false
	}
	return apiErr.Kind, true
}

// IsKind reports whether err is an executor error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
