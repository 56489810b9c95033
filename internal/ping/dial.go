package ping

import (
	"context"
	"errors"
	"net"
	"syscall"
)

// classifyDialError maps a failed connection attempt onto an error kind.
func classifyDialError(rawURL string, err error) *Error {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &Error{Kind: ErrDNSLookupFailed, URL: rawURL, Message: dnsErr.Name, Cause: err}
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.EMFILE, syscall.ENFILE, syscall.ENOBUFS, syscall.EAFNOSUPPORT:
			return &Error{Kind: ErrSocketCreationFailed, URL: rawURL, Code: int(errno), Message: errno.Error(), Cause: err}
		}
		return &Error{Kind: ErrConnectionFailed, URL: rawURL, Code: int(errno), Message: errno.Error(), Cause: err}
	}

	if errors.Is(err, context.Canceled) {
		return &Error{Kind: ErrTransport, URL: rawURL, Message: "canceled", Cause: err}
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: ErrConnectionFailed, URL: rawURL, Code: int(syscall.ETIMEDOUT), Message: "connection timed out", Cause: err}
	}

	return &Error{Kind: ErrConnectionFailed, URL: rawURL, Message: err.Error(), Cause: err}
}
