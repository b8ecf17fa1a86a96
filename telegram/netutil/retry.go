// Package netutil classifies network errors from Telegram API calls.
package netutil

import (
	"errors"
	"net"
	"net/url"
)

// ShouldRetry reports whether err is a transient transport failure
// (timeout, failed dial) rather than a definitive API answer. Only
// transient failures are safe to replay.
func ShouldRetry(err error) bool {
	for err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && (netErr.Timeout() || netErr.Temporary()) {
			return true
		}

		var opErr *net.OpError
		if errors.As(err, &opErr) && opErr.Op == "dial" {
			return true
		}

		// url.Error wraps the transport error; unwrap and classify that.
		var urlErr *url.Error
		if errors.As(err, &urlErr) && urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			err = urlErr.Err
			continue
		}
		return false
	}
	return false
}
