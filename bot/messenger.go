package bot

import (
	"context"
	"errors"
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

// telebotMessenger adapts *tele.Bot to the submission.Messenger capability.
// The bot handle only exists once the transport is built, so it is bound
// from the OnStart hook and guarded until then.
type telebotMessenger struct {
	bot atomic.Pointer[tele.Bot]
}

func (m *telebotMessenger) bind(b *tele.Bot) {
	m.bot.Store(b)
}

// Send delivers a Markdown message to the given chat or user id.
func (m *telebotMessenger) Send(_ context.Context, recipient int64, text string, markup *tele.ReplyMarkup) error {
	b := m.bot.Load()
	if b == nil {
		return errors.New("bot: transport not started")
	}
	opts := &tele.SendOptions{ParseMode: tele.ModeMarkdown}
	if markup != nil {
		opts.ReplyMarkup = markup
	}
	_, err := b.Send(tele.ChatID(recipient), text, opts)
	return err
}
