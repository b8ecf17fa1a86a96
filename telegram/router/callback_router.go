package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/newsbot/telegram"
	"github.com/m3rciful/newsbot/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CallbackOptions overrides the handler for uniques nobody registered.
type CallbackOptions struct {
	NotFound tele.HandlerFunc
}

// CallbackRoute dispatches button presses by their callback unique. The
// payload after '|' stays opaque here; the selected handler validates it.
func CallbackRoute(reg *tg.Registry, opts CallbackOptions) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		if c.Callback() == nil {
			return nil
		}

		key, _ := parseCallback(c.Callback())
		name := "callback." + normalizeHandlerName(key)
		extras := []slog.Attr{slog.String("cb_key", key)}

		// Ack first so the client drops its spinner even if the handler
		// takes a while.
		_ = c.Respond()

		next, ok := reg.GetCallback(key)
		if !ok || next == nil {
			next = opts.NotFound
			if next == nil {
				next = reg.CallbackNotFound()
			}
			extras = append(extras, slog.String("reason", "not_found"))
		}
		return handleWithSummary(c, name, start, "", "", func() error {
			return next(c)
		}, extras...)
	}

	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
