package helpers

import (
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/newsbot/logger"
	"github.com/m3rciful/newsbot/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// The process-wide dispatcher behind the send helpers. RunTelegram sets it
// at startup and clears it on shutdown.
var globalDispatcher atomic.Pointer[sender.Dispatcher]

// SetDispatcher installs (or with nil removes) the async sender.
func SetDispatcher(d *sender.Dispatcher) {
	globalDispatcher.Store(d)
}

// sendAsync queues the send on the dispatcher. Without a dispatcher, or
// when its queue is full or closed, the send runs inline instead so no
// reply is ever silently dropped.
func sendAsync(c tele.Context, action, endpoint string, run func() error) error {
	disp := globalDispatcher.Load()
	if disp == nil {
		return run()
	}

	ctx := BuildContext(c)
	err := disp.Enqueue(ctx, action, endpoint, run)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sender.ErrQueueFull), errors.Is(err, sender.ErrQueueClosed):
		logger.Warn(ctx, "tg.sender", "queue.fallback",
			slog.String("action", action),
			slog.String("endpoint", endpoint),
			slog.String("err", err.Error()),
		)
		return run()
	default:
		return err
	}
}

func mdOpts(markup []*tele.ReplyMarkup) *tele.SendOptions {
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown}
	if len(markup) > 0 {
		opts.ReplyMarkup = markup[0]
	}
	return opts
}

// SendText replies with plain text, no parse mode.
func SendText(c tele.Context, text string, opts ...*tele.SendOptions) error {
	return sendAsync(c, "send.text", "sendMessage", func() error {
		if len(opts) > 0 && opts[0] != nil {
			return c.Send(text, opts[0])
		}
		return c.Send(text)
	})
}

// SendMD replies with Markdown text and an optional inline keyboard.
func SendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return SendText(c, text, mdOpts(markup))
}

// EditMD rewrites the current message in Markdown. With no markup given
// the edit also strips the message's inline keyboard, which is how
// decision buttons get retired.
func EditMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.Edit(text, mdOpts(markup))
}

// EditOrSendMD edits when the update carries an editable message and
// falls back to a fresh send otherwise.
func EditOrSendMD(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return c.EditOrSend(text, mdOpts(markup))
}
