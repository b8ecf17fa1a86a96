package router

import (
	"time"

	tg "github.com/m3rciful/newsbot/telegram"
	"github.com/m3rciful/newsbot/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// FSM is the slice of the session manager the text router needs: whether
// the sender is mid-dialogue and, if so, the handler that consumes the text.
type FSM interface {
	InProgress(userID int64) bool
	ManagerHandler(c tele.Context) error
}

// TextOptions configures the last-resort handler for unroutable text.
type TextOptions struct {
	UnknownText tele.HandlerFunc
}

// TextRoutes builds the OnText route. An active dialogue always wins over
// command parsing, so an author can draft a story titled "/start".
func TextRoutes(fsmMgr FSM, reg *tg.Registry, opts TextOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()

		if fsmMgr != nil && c.Sender() != nil && fsmMgr.InProgress(c.Sender().ID) {
			return handleWithSummary(c, "fsm", start, "", "", func() error {
				return fsmMgr.ManagerHandler(c)
			})
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil {
				return handleWithSummary(c, normalizeHandlerName(key), start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}
		return handleWithSummary(c, "unknown_text", start, "skip", "ok", func() error { return nil })
	}

	return []tg.Route{{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}}
}
