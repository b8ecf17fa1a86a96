package submission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/newsbot/logger"
	"github.com/m3rciful/newsbot/telegram/keyboard"
	"github.com/m3rciful/newsbot/telegram/state"
)

// Dialogue states of the two-step draft conversation.
const (
	StateAwaitingTitle state.State = "submission_title"
	StateAwaitingBody  state.State = "submission_body"
)

const tempTitleKey = "pending_title"

const (
	titlePrompt     = "Send a title for your story:"
	bodyPrompt      = "Now send the full text of your story:"
	submittedReply  = "Your story was sent to moderation."
	cancelledReply  = "Cancelled."
	missingTitle    = "(untitled)"
	moderationIntro = "*New story for review*"
)

// Conversation drives the per-user drafting dialogue. State is scoped per
// user through the session manager, so concurrent drafts never interfere.
type Conversation struct {
	sessions       state.Manager
	store          Store
	outbox         Messenger
	moderationChat int64
	now            func() time.Time
}

// NewConversation wires the drafting dialogue to its session manager, store
// and outbound messenger.
func NewConversation(sessions state.Manager, store Store, outbox Messenger, moderationChat int64) *Conversation {
	return &Conversation{
		sessions:       sessions,
		store:          store,
		outbox:         outbox,
		moderationChat: moderationChat,
		now:            time.Now,
	}
}

// Start begins a fresh draft for the user and returns the title prompt.
// Starting over while mid-dialogue resets any previous progress.
func (c *Conversation) Start(userID int64) string {
	c.sessions.ClearTemp(userID, tempTitleKey)
	c.sessions.SetState(userID, StateAwaitingTitle)
	return titlePrompt
}

// Cancel aborts the dialogue at any point, clearing all draft state.
func (c *Conversation) Cancel(userID int64) string {
	c.sessions.Clear(userID)
	return cancelledReply
}

// InProgress reports whether the user currently has an active draft dialogue.
func (c *Conversation) InProgress(userID int64) bool {
	return c.sessions.InProgress(userID)
}

// HandleText advances the dialogue with the author's next message and returns
// the reply for the author. Input is accepted verbatim, empty text included;
// that is a product decision inherited from the flow's design, not a gap.
func (c *Conversation) HandleText(ctx context.Context, author Author, text string) (string, error) {
	switch c.sessions.GetState(author.ID) {
	case StateAwaitingTitle:
		c.sessions.SetTemp(author.ID, tempTitleKey, text)
		c.sessions.SetState(author.ID, StateAwaitingBody)
		logger.SVCSubmissions.LogAttrs(ctx, slog.LevelDebug, "draft.title",
			slog.Int64("user_id", author.ID),
			slog.String("title", logger.SanitizeLimit(text, 128)),
		)
		return bodyPrompt, nil

	case StateAwaitingBody:
		return c.complete(ctx, author, text)
	}

	// Not in a draft; nothing for this component to do.
	return "", nil
}

func (c *Conversation) complete(ctx context.Context, author Author, body string) (string, error) {
	title, ok := c.sessions.GetTempString(author.ID, tempTitleKey)
	if !ok {
		title = missingTitle
	}

	rec := Record{
		ID:         NewID(author.ID, c.now()),
		Title:      title,
		Body:       body,
		AuthorID:   author.ID,
		AuthorName: author.DisplayName(),
	}
	c.store.Put(rec.ID, rec)

	markup := keyboard.Row(
		keyboard.InlineBtn{Text: "✅ Publish", Unique: string(ActionPublish), Data: rec.ID},
		keyboard.InlineBtn{Text: "❌ Reject", Unique: string(ActionReject), Data: rec.ID},
	)

	// A failure here propagates: the moderation surface is the critical path.
	// The record stays in the store and the dialogue stays in the body step,
	// so the author can simply send the text again.
	if err := c.outbox.Send(ctx, c.moderationChat, moderationText(rec), markup); err != nil {
		return "", fmt.Errorf("send moderation request: %w", err)
	}

	c.sessions.Clear(author.ID)
	logger.SVCSubmissions.LogAttrs(ctx, slog.LevelInfo, "draft.completed",
		slog.Int64("user_id", author.ID),
		slog.String("submission_id", rec.ID),
		slog.Int("pending_count", c.store.Len()),
	)
	return submittedReply, nil
}

func moderationText(rec Record) string {
	return fmt.Sprintf(
		"%s\n\n*From:* %s (ID: %d)\n*Title:* %s\n*Text:* %s\n\n*ID:* `%s`",
		moderationIntro, rec.AuthorName, rec.AuthorID, rec.Title, rec.Body, rec.ID,
	)
}
