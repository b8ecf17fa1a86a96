package bot

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/newsbot/logger"
	"github.com/m3rciful/newsbot/submission"
	"github.com/m3rciful/newsbot/telegram/callbacks"
	tghelpers "github.com/m3rciful/newsbot/telegram/helpers"
	"github.com/m3rciful/newsbot/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// entryCallbackKey is the inline-button key that starts a draft dialogue.
const entryCallbackKey = "start_post"

const greeting = "News submission bot. Press the button to suggest a story."

func authorFrom(u *tele.User) submission.Author {
	if u == nil {
		return submission.Author{}
	}
	return submission.Author{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
	}
}

func (a *App) handleStart(c tele.Context) error {
	markup := keyboard.Column(
		keyboard.InlineBtn{Text: "📝 Suggest a story", Unique: entryCallbackKey},
	)
	return tghelpers.SendMD(c, greeting, markup)
}

func (a *App) handleStartPost(c tele.Context) error {
	prompt := a.conv.Start(c.Sender().ID)
	return tghelpers.EditOrSendMD(c, prompt)
}

func (a *App) handleDraftText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	reply, err := a.conv.HandleText(ctx, authorFrom(c.Sender()), c.Text())
	if err != nil {
		return err
	}
	if reply == "" {
		return nil
	}
	return tghelpers.SendText(c, reply)
}

func (a *App) handleCancel(c tele.Context) error {
	return tghelpers.SendText(c, a.conv.Cancel(c.Sender().ID))
}

func (a *App) handleDecision(action submission.Action) tele.HandlerFunc {
	return func(c tele.Context) error {
		ctx := tghelpers.BuildContext(c)
		text, err := a.mod.Decide(ctx, action, callbacks.CallbackPayload(c))
		if errors.Is(err, submission.ErrBadDecision) {
			return c.Respond(&tele.CallbackResponse{Text: "Unsupported action"})
		}
		if err != nil {
			return err
		}
		return tghelpers.EditMD(c, text)
	}
}

func (a *App) handleQueue(c tele.Context) error {
	return tghelpers.SendText(c, fmt.Sprintf("Pending submissions: %d", a.store.Len()))
}

// handleUnknownText mirrors every unrecognized message into the debug log so
// routing problems are visible without replying to the user.
func (a *App) handleUnknownText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	logger.Debug(ctx, "tg", "text.unhandled",
		slog.Int64("user_id", c.Sender().ID),
		slog.String("payload", logger.SanitizeLimit(c.Text(), 256)),
	)
	return nil
}
