package submission

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

// Messenger is the narrow outbound capability the pipeline needs to reach
// chats other than the one currently being handled: the moderation group,
// the public channel, and authors' private chats.
type Messenger interface {
	Send(ctx context.Context, recipient int64, text string, markup *tele.ReplyMarkup) error
}
