package retry

import (
	"context"
	"errors"
	"net"
	"syscall"
	"time"

	ai "github.com/moneypilot/moneypilot"
)

// IsTransient reports whether err is worth retrying. Categorized errors
// decide for themselves; otherwise timeouts, including a per-request
// deadline, and dropped connections are transient. Cancellation is not.
// Do separately stops once the caller's own context is done.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if cat := ai.CategoryOf(err); cat != "" {
		return cat == ai.ErrorTransient
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.Temporary()
	}

	return errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ETIMEDOUT)
}

// effectiveDelay honors the server's Retry-After when it asks for longer
// than the configured backoff.
func effectiveDelay(configured time.Duration, err error) time.Duration {
	if server := ai.RetryAfterOf(err); server > configured {
		return server
	}
	return configured
}
