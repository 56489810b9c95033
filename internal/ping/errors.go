package ping

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error matches exactly one of these with errors.Is.
var (
	ErrSocketCreationFailed = errors.New("socket creation failed")
	ErrDNSLookupFailed      = errors.New("DNS lookup failure")
	ErrConnectionFailed     = errors.New("connection failed")
	ErrHTTPError            = errors.New("HTTP error")
	ErrMaxRedirectsExceeded = errors.New("max redirects reached")
	ErrInvalidURL           = errors.New("invalid URL")
	ErrTransport            = errors.New("transport error")
)

// Error describes why a ping to one endpoint failed.
type Error struct {
	Kind    error  // one of the Err* kinds above
	URL     string // request URL at the time of failure
	Code    int    // HTTP status for ErrHTTPError, errno for ErrConnectionFailed, limit for ErrMaxRedirectsExceeded
	Message string
	Cause   error
}

func (e *Error) Error() string {
	var s string
	switch e.Kind {
	case ErrHTTPError, ErrConnectionFailed:
		s = fmt.Sprintf("%v (%d) %s", e.Kind, e.Code, e.Message)
	case ErrMaxRedirectsExceeded:
		s = fmt.Sprintf("%v: %d", e.Kind, e.Code)
	default:
		if e.Message != "" {
			s = fmt.Sprintf("%v: %s", e.Kind, e.Message)
		} else {
			s = e.Kind.Error()
		}
	}
	if e.URL != "" {
		s = fmt.Sprintf("ping %s: %s", e.URL, s)
	}
	return s
}

// Is matches the error kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether a later attempt could plausibly succeed. Pings are never
// retried automatically; callers use this only for reporting.
func IsRetryable(err error) bool {
	var pe *Error
	if !errors.As(err, &pe) {
		return false
	}
	switch pe.Kind {
	case ErrDNSLookupFailed, ErrConnectionFailed, ErrTransport, ErrSocketCreationFailed:
		return true
	case ErrHTTPError:
		return pe.Code >= 500
	default:
		return false
	}
}
