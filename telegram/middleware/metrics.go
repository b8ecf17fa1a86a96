package middleware

import (
	tele "gopkg.in/telebot.v4"
)

// Per-update counters stored on the telebot context. The router's summary
// log reads them to report how many messages a handler produced.
const (
	ctxKeyMessages = "messages"
	ctxKeyKeyboard = "kb"
)

// MessageMetricsMiddleware swaps in a context that counts outbound
// messages and notes whether any of them carried an inline keyboard.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		c.Set(ctxKeyMessages, 0)
		c.Set(ctxKeyKeyboard, false)
		return next(countingContext{Context: c})
	}
}

// GetCounters returns the message count and keyboard flag for the update.
func GetCounters(c tele.Context) (int, bool) {
	msgs, _ := c.Get(ctxKeyMessages).(int)
	kb, _ := c.Get(ctxKeyKeyboard).(bool)
	return msgs, kb
}

type countingContext struct{ tele.Context }

func (m countingContext) Send(what interface{}, opts ...interface{}) error {
	return m.observe(m.Context.Send(what, opts...), opts)
}

func (m countingContext) Reply(what interface{}, opts ...interface{}) error {
	return m.observe(m.Context.Reply(what, opts...), opts)
}

func (m countingContext) Edit(what interface{}, opts ...interface{}) error {
	return m.observe(m.Context.Edit(what, opts...), opts)
}

func (m countingContext) EditOrSend(what interface{}, opts ...interface{}) error {
	return m.observe(m.Context.EditOrSend(what, opts...), opts)
}

func (m countingContext) observe(err error, opts []interface{}) error {
	if err != nil {
		return err
	}
	count, _ := m.Get(ctxKeyMessages).(int)
	m.Set(ctxKeyMessages, count+1)
	if withKeyboard(opts) {
		m.Set(ctxKeyKeyboard, true)
	}
	return nil
}

func withKeyboard(opts []interface{}) bool {
	for _, o := range opts {
		switch v := o.(type) {
		case *tele.ReplyMarkup:
			if v != nil {
				return true
			}
		case *tele.SendOptions:
			if v != nil && v.ReplyMarkup != nil {
				return true
			}
		}
	}
	return false
}
