package middleware

import (
	"log/slog"
	"runtime/debug"

	"github.com/m3rciful/newsbot/logger"

	tele "gopkg.in/telebot.v4"
)

// RecoverMiddleware keeps a panicking handler from taking down the update
// loop. The update is lost; the panic is logged with its stack.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			attrs := []slog.Attr{
				slog.String("event", "tg.panic"),
				slog.Any("err", r),
				slog.String("stack", string(debug.Stack())),
			}
			if u := c.Update(); u.ID != 0 {
				attrs = append(attrs, slog.Int("update_id", u.ID))
			}
			logger.TG.LogAttrs(logger.Background(), slog.LevelError, "panic recovered", attrs...)
		}()
		return next(c)
	}
}
