package api

import (
	"errors"
	"fmt"
)

// ConnectionErrMsg is the normalized message for requests that never
// produced a usable response: connection refused, timeouts, unparseable
// bodies. Callers show it as-is.
const ConnectionErrMsg = "connection error"

// ErrSessionExpired is returned when the backend rejects the bearer
// token. By the time a caller sees it the stored session has already
// been cleared and the expiry handler notified; the only sensible
// reaction is to re-authenticate, never to retry.
var ErrSessionExpired = errors.New("session expired")

// Error is the single error representation for failed remote calls.
// StatusCode is zero for transport-level failures.
type Error struct {
	StatusCode int
	Detail     string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return e.Detail
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Detail, e.StatusCode)
}

// Message returns the human-readable detail without the status suffix.
func (e *Error) Message() string {
	return e.Detail
}

func connectionError(err error) *Error {
	_ = err // underlying cause is logged, not surfaced
	return &Error{Detail: ConnectionErrMsg}
}

// IsValidation reports whether the error is a structured backend
// rejection (as opposed to a transport failure or session expiry).
func IsValidation(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}
