package telegram

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/m3rciful/newsbot/telegram/netutil"
)

const (
	apiClientTimeout = 30 * time.Second
	apiDialTimeout   = 5 * time.Second
	apiRetryAttempts = 3
	apiRetryBackoff  = 2 * time.Second
)

// BuildHTTPClient returns the client telebot uses against api.telegram.org.
// Transient network failures retry at the transport level so a single
// flaky dial does not surface as a failed send.
func BuildHTTPClient() *http.Client {
	return &http.Client{
		Timeout: apiClientTimeout,
		Transport: &retryTransport{
			base: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: apiDialTimeout, KeepAlive: 30 * time.Second}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       30 * time.Second,
				TLSHandshakeTimeout:   5 * time.Second,
				ResponseHeaderTimeout: 5 * time.Second,
				ExpectContinueTimeout: time.Second,
			},
			attempts: apiRetryAttempts,
			backoff:  apiRetryBackoff,
		},
	}
}

// retryTransport retries transport-level errors with linear backoff.
// HTTP-level failures (429, 5xx) pass through untouched; telebot and the
// dispatcher decide what to do with those.
type retryTransport struct {
	base     http.RoundTripper
	attempts int
	backoff  time.Duration
}

func (t *retryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	var lastErr error
	for attempt := 0; attempt <= t.attempts; attempt++ {
		attemptReq := req
		if attempt > 0 {
			attemptReq = req.Clone(req.Context())
			switch {
			case req.GetBody != nil:
				body, err := req.GetBody()
				if err != nil {
					return nil, err
				}
				attemptReq.Body = body
			case req.Body != nil:
				// Body already consumed and not replayable.
				return nil, lastErr
			}
		}

		resp, err := t.base.RoundTrip(attemptReq)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !netutil.ShouldRetry(err) || attempt == t.attempts {
			break
		}
		if err := sleepCtx(req.Context(), t.backoff*time.Duration(attempt+1)); err != nil {
			return nil, err
		}
	}
	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
