// Package callbacks decodes telebot's inline-button callback data.
//
// Buttons built with markup.Data carry "\f<unique>|<payload>" in their
// callback; telebot fills cb.Unique only when the update was matched to a
// unique-specific endpoint, so a generic OnCallback handler has to parse
// the raw data itself.
package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// ParseCallbackData splits callback data into its unique and payload.
// Either part may be empty; a nil callback parses as empty.
func ParseCallbackData(cb *tele.Callback) (unique, payload string) {
	if cb == nil {
		return "", ""
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	raw = strings.TrimPrefix(raw, "\\f")

	unique, payload, found := strings.Cut(raw, "|")
	if !found {
		payload = ""
	}
	return strings.TrimSpace(unique), payload
}

// CallbackKey returns the pressed button's unique for the update.
func CallbackKey(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Unique
	}
	unique, _ := ParseCallbackData(cb)
	return unique
}

// CallbackPayload returns the payload after '|'. When telebot routed the
// press by unique it has already stripped the prefix and Data is the
// payload itself.
func CallbackPayload(c tele.Context) string {
	cb := c.Callback()
	if cb == nil {
		return ""
	}
	if cb.Unique != "" {
		return cb.Data
	}
	_, payload := ParseCallbackData(cb)
	return payload
}
