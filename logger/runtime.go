package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
)

type contextKey int

const (
	ctxRID contextKey = iota
	ctxMeta
	ctxLogger
	ctxHandler
)

// updateMeta carries the identifiers of one Telegram update through the
// request context as a single value.
type updateMeta struct {
	updateID int
	userID   int64
	chatID   int64
}

// WithLogger stores a logger in ctx for layers that have no component of
// their own.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxLogger, log)
}

// FromContext returns the logger stored in ctx, else the base logger.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxLogger).(*slog.Logger); ok {
			return l
		}
	}
	return L
}

// WithRID attaches the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRID, rid)
}

// RIDFrom returns the correlation id, or "".
func RIDFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	rid, _ := ctx.Value(ctxRID).(string)
	return rid
}

// WithUpdateMeta attaches the update, user and chat ids.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxMeta, updateMeta{
		updateID: updateID,
		userID:   userID,
		chatID:   chatID,
	})
}

func metaFrom(ctx context.Context) updateMeta {
	if ctx == nil {
		return updateMeta{}
	}
	meta, _ := ctx.Value(ctxMeta).(updateMeta)
	return meta
}

// UpdateIDFrom returns the update id, or 0.
func UpdateIDFrom(ctx context.Context) int { return metaFrom(ctx).updateID }

// UserIDFrom returns the Telegram user id, or 0.
func UserIDFrom(ctx context.Context) int64 { return metaFrom(ctx).userID }

// ChatIDFrom returns the chat id, or 0.
func ChatIDFrom(ctx context.Context) int64 { return metaFrom(ctx).chatID }

// WithHandler records which handler owns the rest of the request.
func WithHandler(ctx context.Context, handler string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if handler == "" {
		return ctx
	}
	return context.WithValue(ctx, ctxHandler, handler)
}

// HandlerFrom returns the handler name, or "".
func HandlerFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	h, _ := ctx.Value(ctxHandler).(string)
	return h
}

// BuildRID formats the correlation id as updateID:chatID:userID.
func BuildRID(updateID int, chatID, userID int64) string {
	return fmt.Sprintf("%d:%d:%d", updateID, chatID, userID)
}

// Sanitize strips control and format runes from user-supplied text before
// it reaches a log line. Tab and newline survive.
func Sanitize(s string) string {
	clean := strings.Builder{}
	clean.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			clean.WriteRune(r)
		case r == 0x7F, unicode.IsControl(r), unicode.Is(unicode.Cf, r):
		default:
			clean.WriteRune(r)
		}
	}
	return clean.String()
}

// SanitizeLimit sanitizes s and truncates it to max runes.
func SanitizeLimit(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(Sanitize(s))
	if len(runes) > max {
		runes = runes[:max]
	}
	return string(runes)
}
