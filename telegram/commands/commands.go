// Package commands defines the metadata attached to slash-command handlers.
package commands

import tele "gopkg.in/telebot.v4"

// Command couples a slash-command handler with its menu metadata.
// AdminOnly commands are wrapped with an access check at route build time;
// Hidden ones never appear in the Telegram command menu.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
}
