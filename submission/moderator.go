package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/m3rciful/newsbot/archive"
	"github.com/m3rciful/newsbot/logger"
)

// Action is a terminal moderation decision.
type Action string

const (
	ActionPublish Action = "publish"
	ActionReject  Action = "reject"
)

// ErrBadDecision reports a decision event whose payload failed boundary
// validation (unknown action or missing submission id).
var ErrBadDecision = errors.New("submission: malformed decision")

const (
	notFoundReply = "Submission not found (possibly already processed)"

	publishedNotice = "Your story was published!\n\n*%s*"
	rejectedNotice  = "Your story was rejected by a moderator.\n\n*%s*"
)

// Moderator applies publish/reject decisions to stored submissions. Each
// found decision runs its side effects and then retires the record, so a
// replayed decision for the same id always lands on the not-found path.
type Moderator struct {
	store    Store
	outbox   Messenger
	channel  int64
	recorder archive.Recorder
}

// NewModerator wires the decision handler. recorder may be nil when no
// archive database is configured.
func NewModerator(store Store, outbox Messenger, channel int64, recorder archive.Recorder) *Moderator {
	return &Moderator{
		store:    store,
		outbox:   outbox,
		channel:  channel,
		recorder: recorder,
	}
}

// Decide applies one terminal decision and returns the text the moderation
// message should be edited to. A publish failure on the channel send is the
// only error that propagates; the record then stays resolvable for a retry.
func (m *Moderator) Decide(ctx context.Context, action Action, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("%w: empty id", ErrBadDecision)
	}
	if action != ActionPublish && action != ActionReject {
		return "", fmt.Errorf("%w: action %q", ErrBadDecision, string(action))
	}

	rec, ok := m.store.Get(id)
	if !ok {
		logger.SVCModeration.LogAttrs(ctx, slog.LevelInfo, "decision.not_found",
			slog.String("submission_id", id),
			slog.String("action", string(action)),
		)
		return notFoundReply, nil
	}

	if action == ActionPublish {
		if err := m.outbox.Send(ctx, m.channel, formatPost(rec), nil); err != nil {
			return "", fmt.Errorf("publish to channel: %w", err)
		}
		m.notifyAuthor(ctx, rec, fmt.Sprintf(publishedNotice, rec.Title))
	} else {
		m.notifyAuthor(ctx, rec, fmt.Sprintf(rejectedNotice, rec.Title))
	}

	m.record(ctx, rec, action)
	m.store.Delete(id)

	logger.SVCModeration.LogAttrs(ctx, slog.LevelInfo, "decision.applied",
		slog.String("submission_id", id),
		slog.String("action", string(action)),
		slog.Int64("author_id", rec.AuthorID),
		slog.Int("pending_count", m.store.Len()),
	)
	return terminalText(action, rec), nil
}

// notifyAuthor is best effort: an unreachable author (blocked bot, closed
// account) must never block or fail the decision itself.
func (m *Moderator) notifyAuthor(ctx context.Context, rec Record, text string) {
	if err := m.outbox.Send(ctx, rec.AuthorID, text, nil); err != nil {
		logger.SVCModeration.LogAttrs(ctx, slog.LevelWarn, "notify.author.failed",
			slog.String("submission_id", rec.ID),
			slog.Int64("author_id", rec.AuthorID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
}

// record archives the terminal outcome when an archive is configured.
// Archive failures are logged and never block the decision.
func (m *Moderator) record(ctx context.Context, rec Record, action Action) {
	if m.recorder == nil {
		return
	}
	status := archive.StatusRejected
	if action == ActionPublish {
		status = archive.StatusPublished
	}
	entry := archive.Entry{
		ID:         rec.ID,
		Title:      rec.Title,
		Body:       rec.Body,
		AuthorID:   rec.AuthorID,
		AuthorName: rec.AuthorName,
		Status:     status,
	}
	if err := m.recorder.Record(ctx, entry); err != nil {
		logger.SVCModeration.LogAttrs(ctx, slog.LevelWarn, "archive.failed",
			slog.String("submission_id", rec.ID),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
	}
}

func formatPost(rec Record) string {
	return fmt.Sprintf("*%s*\n\n%s", rec.Title, rec.Body)
}

func terminalText(action Action, rec Record) string {
	verdict := "❌ REJECTED"
	if action == ActionPublish {
		verdict = "✅ PUBLISHED"
	}
	return fmt.Sprintf("%s\n\nTitle: %s\nAuthor: %s\nID: %s", verdict, rec.Title, rec.AuthorName, rec.ID)
}
