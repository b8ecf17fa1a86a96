// Package sender runs outbound Telegram calls on a worker pool so slow or
// retried sends never block update handling.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/newsbot/logger"
	"github.com/m3rciful/newsbot/telegram/netutil"

	tele "gopkg.in/telebot.v4"
)

var (
	// ErrQueueClosed reports an enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull reports a saturated queue; the caller decides whether
	// to run the job inline instead.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

var tokenRe = regexp.MustCompile(`bot[0-9]+:[A-Za-z0-9_-]+`)

// Options tunes the dispatcher. Zero values take the defaults below.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration caps the total time one job may spend retrying.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// attrs builds the log attributes shared by every line about this job.
func (j job) attrs(ctx context.Context) []slog.Attr {
	out := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		out = append(out, slog.String("endpoint", j.endpoint))
	}
	if rid := logger.RIDFrom(ctx); rid != "" {
		out = append(out, slog.String("rid", rid))
	}
	if id := logger.UpdateIDFrom(ctx); id != 0 {
		out = append(out, slog.Int("update_id", id))
	}
	if id := logger.ChatIDFrom(ctx); id != 0 {
		out = append(out, slog.Int64("chat_id", id))
	}
	if id := logger.UserIDFrom(ctx); id != 0 {
		out = append(out, slog.Int64("user_id", id))
	}
	return out
}

// Dispatcher owns the queue and worker pool for outbound calls.
type Dispatcher struct {
	opts Options
	jobs chan job
	stop chan struct{}
	once sync.Once
	wg   sync.WaitGroup
	errs atomic.Uint64
}

// NewDispatcher starts the workers immediately.
func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		opts: opts.withDefaults(),
		stop: make(chan struct{}),
	}
	d.jobs = make(chan job, d.opts.QueueSize)

	d.wg.Add(d.opts.Workers)
	for i := 0; i < d.opts.Workers; i++ {
		go func() {
			defer d.wg.Done()
			for j := range d.jobs {
				d.process(j)
			}
		}()
	}
	return d
}

// Enqueue hands run to the pool without blocking. The closure must be
// idempotent when retries are enabled.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	select {
	case <-d.stop:
		return ErrQueueClosed
	default:
	}

	select {
	case d.jobs <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount reports how many jobs exhausted their retries.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close drains the queue and waits for the workers. Safe to call twice.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.stop)
		close(d.jobs)
		d.wg.Wait()
	})
}

func (d *Dispatcher) process(j job) {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	budget, cancel := context.WithTimeout(ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	logger.Debug(ctx, "tg.sender", "send.start", j.attrs(ctx)...)

	attempts := d.opts.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if budget.Err() != nil {
			lastErr = budget.Err()
			break
		}

		err := j.run()
		if err == nil {
			d.logSuccess(ctx, j, attempt, time.Since(start))
			return
		}
		lastErr = err

		if !netutil.ShouldRetry(err) || attempt == attempts {
			break
		}
		delay := d.opts.RetryBackoff * time.Duration(attempt)
		select {
		case <-budget.Done():
			lastErr = budget.Err()
		case <-time.After(delay):
			logger.Debug(ctx, "tg.sender", "send.retry.backoff",
				append(j.attrs(ctx),
					slog.Int("attempt", attempt),
					slog.Duration("delay", delay),
				)...,
			)
			continue
		}
		break
	}

	d.errs.Add(1)
	logger.Error(ctx, "tg.sender", "send.fail",
		append(j.attrs(ctx),
			slog.String("error", sanitizeErrorMessage(lastErr)),
			slog.String("error_kind", classifyError(lastErr)),
			slog.Int("attempts", attempts),
			slog.Int("elapsed_ms", elapsedMS(time.Since(start))),
		)...,
	)
}

func (d *Dispatcher) logSuccess(ctx context.Context, j job, attempt int, elapsed time.Duration) {
	attrs := j.attrs(ctx)
	attrs = append(attrs, slog.Int("elapsed_ms", elapsedMS(elapsed)))
	if attempt > 1 {
		attrs = append(attrs, slog.Int("attempt", attempt))
		logger.Info(ctx, "tg.sender", "send.retry.success", attrs...)
		return
	}
	logger.Debug(ctx, "tg.sender", "send.success", attrs...)
}

func elapsedMS(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	return int(logger.RoundMS(d) / time.Millisecond)
}

// classifyError labels a failed send for log aggregation. The buckets are
// coarse on purpose: timeout, dns, dial, http_4xx, http_5xx, unknown.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return "timeout"
		}
		return "dns"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return "timeout"
		}
		if opErr.Op == "dial" {
			return "dial"
		}
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return "timeout"
		}
		if urlErr.Err != nil && !errors.Is(urlErr.Err, err) {
			if kind := classifyError(urlErr.Err); kind != "" && kind != "unknown" {
				return kind
			}
		}
	}

	switch status := httpStatusFromError(err); {
	case status >= 500:
		return "http_5xx"
	case status >= 400:
		return "http_4xx"
	}
	return "unknown"
}

// sanitizeErrorMessage redacts the bot token that net/http embeds in
// request URLs inside error strings.
func sanitizeErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	return tokenRe.ReplaceAllString(err.Error(), "bot<redacted>")
}

// httpStatusFromError extracts an HTTP status from telebot errors, falling
// back to the "(NNN)" suffix telebot puts in error strings.
func httpStatusFromError(err error) int {
	if err == nil {
		return 0
	}

	var apiErr *tele.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var floodErr tele.FloodError
	if errors.As(err, &floodErr) {
		return http.StatusTooManyRequests
	}
	var groupErr tele.GroupError
	if errors.As(err, &groupErr) {
		return http.StatusBadRequest
	}

	msg := err.Error()
	open := strings.LastIndex(msg, "(")
	closing := strings.LastIndex(msg, ")")
	if open >= 0 && closing > open+1 {
		if code, convErr := strconv.Atoi(strings.TrimSpace(msg[open+1 : closing])); convErr == nil {
			return code
		}
	}
	return 0
}
