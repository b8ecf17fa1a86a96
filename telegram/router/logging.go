// Package router builds the telebot routes for commands, callbacks and
// plain text, wrapping every handler with a uniform summary log line.
package router

import (
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/newsbot/logger"
	"github.com/m3rciful/newsbot/telegram/callbacks"
	tghelpers "github.com/m3rciful/newsbot/telegram/helpers"
	"github.com/m3rciful/newsbot/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// handleWithSummary runs fn and emits exactly one handler.handled line,
// carrying the outcome, timing and per-update message counters.
func handleWithSummary(c tele.Context, name string, start time.Time, statusOverride, outcomeOverride string, fn func() error, extras ...slog.Attr) error {
	ctx := tghelpers.WithHandler(c, name)
	err := fn()

	status := statusOverride
	if status == "" {
		status = "ok"
		if err != nil {
			status = "fail"
		}
	}
	outcome := outcomeOverride
	if outcome == "" {
		outcome = status
	}

	msgs, kb := middleware.GetCounters(c)
	attrs := []slog.Attr{
		slog.String("status", status),
		slog.String("handler", name),
		slog.String("outcome", outcome),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Int64("duration_ms", logger.RoundMS(time.Since(start)).Milliseconds()),
	}
	if err != nil {
		attrs = append(attrs,
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
			slog.String("err_code", deriveErrorCode(err)),
			slog.String("cause", name),
		)
	}
	attrs = append(attrs, extras...)
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelInfo, "handler.handled", attrs...)
	return err
}

func normalizeHandlerName(name string) string {
	name = strings.TrimSpace(strings.TrimPrefix(name, "/"))
	if name == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// deriveErrorCode produces a stable machine-readable code from an error:
// its Code() when it has one, else its concrete type name.
func deriveErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if c, ok := err.(interface{ Code() string }); ok {
		if code := strings.TrimSpace(c.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "UNKNOWN_ERROR"
	}
	return strings.ToUpper(strings.ReplaceAll(t.Name(), " ", "_"))
}

func parseCallback(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	return callbacks.ParseCallbackData(cb)
}
